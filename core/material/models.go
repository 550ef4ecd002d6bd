package material

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
)

type (
	Course struct {
		ID          int      `json:"id" db:"id"`
		Title       string   `json:"title" db:"title"`
		Description string   `json:"description" db:"description"`
		OwnerID     null.Int `json:"owner" db:"owner_id"`
	}

	Module struct {
		ID          int      `json:"id" db:"id"`
		Title       string   `json:"title" db:"title"`
		Description string   `json:"description" db:"description"`
		CourseID    int      `json:"course" db:"course_id"`
		OwnerID     null.Int `json:"owner" db:"owner_id"`
	}

	Lesson struct {
		ID          int      `json:"id" db:"id"`
		Title       string   `json:"title" db:"title"`
		Description string   `json:"description" db:"description"`
		Image       string   `json:"image" db:"image"`
		Video       string   `json:"video" db:"video"`
		ModuleID    null.Int `json:"module" db:"module_id"`
		OwnerID     null.Int `json:"owner" db:"owner_id"`
	}

	Enrollment struct {
		ID        int       `json:"id" db:"id"`
		StudentID int       `json:"student" db:"student_id"`
		CourseID  int       `json:"course" db:"course_id"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	}
)

type (
	ModuleView struct {
		Module
		CountLessons int `json:"count_lessons"`
	}

	CourseView struct {
		Course
		CountModules int          `json:"count_modules"`
		Modules      []ModuleView `json:"modules"`
		IsEnrolled   bool         `json:"is_enrolled"`
	}
)

// Filter narrows list queries. Zero fields are ignored.
type Filter struct {
	Scope    policy.Scope
	CourseID int
	ModuleID int
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,notblank,max=100,noforbidden"`
	Description string `json:"description" validate:"noforbidden"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// Update returns the full replacement of a Course.
func (nc NewCourse) Update() UpdateCourse {
	return UpdateCourse{Title: &nc.Title, Description: &nc.Description}
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=100,noforbidden"`
	Description *string `json:"description" validate:"omitempty,noforbidden"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	cleanPtr(uc.Title)
	cleanPtr(uc.Description)
	return validate.Struct(uc)
}

func (uc UpdateCourse) apply(c Course) Course {
	if uc.Title != nil {
		c.Title = *uc.Title
	}
	if uc.Description != nil {
		c.Description = *uc.Description
	}
	return c
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title       string `json:"title" validate:"required,notblank,max=100,noforbidden"`
	Description string `json:"description" validate:"noforbidden"`
	CourseID    int    `json:"course" validate:"required"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return validate.Struct(nm)
}

func (nm NewModule) Update() UpdateModule {
	return UpdateModule{Title: &nm.Title, Description: &nm.Description, CourseID: &nm.CourseID}
}

type UpdateModule struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=100,noforbidden"`
	Description *string `json:"description" validate:"omitempty,noforbidden"`
	CourseID    *int    `json:"course" validate:"omitempty,min=1"`
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	cleanPtr(um.Title)
	cleanPtr(um.Description)
	return validate.Struct(um)
}

func (um UpdateModule) apply(m Module) Module {
	if um.Title != nil {
		m.Title = *um.Title
	}
	if um.Description != nil {
		m.Description = *um.Description
	}
	if um.CourseID != nil {
		m.CourseID = *um.CourseID
	}
	return m
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	Title       string   `json:"title" validate:"required,notblank,max=100,noforbidden"`
	Description string   `json:"description" validate:"noforbidden"`
	Image       string   `json:"image" validate:"max=255"`
	Video       string   `json:"video" validate:"omitempty,url,max=200"`
	ModuleID    null.Int `json:"module"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Description = core.CleanString(nl.Description)
	nl.Image = core.CleanString(nl.Image)
	nl.Video = core.CleanString(nl.Video)
	return validate.Struct(nl)
}

func (nl NewLesson) Update() UpdateLesson {
	return UpdateLesson{
		Title:       &nl.Title,
		Description: &nl.Description,
		Image:       &nl.Image,
		Video:       &nl.Video,
		ModuleID:    &nl.ModuleID,
	}
}

type UpdateLesson struct {
	Title       *string   `json:"title" validate:"omitempty,notblank,max=100,noforbidden"`
	Description *string   `json:"description" validate:"omitempty,noforbidden"`
	Image       *string   `json:"image" validate:"omitempty,max=255"`
	Video       *string   `json:"video" validate:"omitempty,url,max=200"`
	ModuleID    *null.Int `json:"module"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	cleanPtr(ul.Title)
	cleanPtr(ul.Description)
	cleanPtr(ul.Image)
	cleanPtr(ul.Video)
	video := ul.Video
	if video != nil && *video == "" {
		ul.Video = nil // clearing the video is allowed
	}
	err := validate.Struct(ul)
	ul.Video = video
	return err
}

func (ul UpdateLesson) apply(l Lesson) Lesson {
	if ul.Title != nil {
		l.Title = *ul.Title
	}
	if ul.Description != nil {
		l.Description = *ul.Description
	}
	if ul.Image != nil {
		l.Image = *ul.Image
	}
	if ul.Video != nil {
		l.Video = *ul.Video
	}
	if ul.ModuleID != nil {
		l.ModuleID = *ul.ModuleID
	}
	return l
}

// ToggleResult is the outcome of an enrollment toggle.
type ToggleResult struct {
	Enrolled bool   `json:"-"`
	Message  string `json:"message"`
}

// EnrollmentNotice is the data of the "enrollment_notice" email template.
type EnrollmentNotice struct {
	CourseTitle  string
	StudentName  string
	StudentEmail string
	OwnerEmail   string
}

func cleanPtr(s *string) {
	if s != nil {
		*s = core.CleanString(*s)
	}
}
