package material

import (
	"context"
	"net/mail"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("not found")

	msgEnrolled  = "you have been enrolled in the course"
	msgWithdrawn = "you have withdrawn from the course"

	enrollmentNoticeTmpl    = "enrollment_notice"
	enrollmentNoticeSubject = "New enrollment"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryCourses(ctx context.Context, filter Filter, opts core.ListOptions) ([]Course, int, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		CreateModule(ctx context.Context, m Module) (Module, error)
		// QueryModules supports Filter.Scope and Filter.CourseID.
		QueryModules(ctx context.Context, filter Filter, opts core.ListOptions) ([]Module, int, error)
		GetModule(ctx context.Context, id int) (Module, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		DeleteModule(ctx context.Context, id int) error

		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
		// QueryLessons supports Filter.Scope and Filter.ModuleID.
		QueryLessons(ctx context.Context, filter Filter, opts core.ListOptions) ([]Lesson, int, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id int) error
		// CountLessons returns the number of lessons of each of the given modules.
		CountLessons(ctx context.Context, moduleIDs ...int) (map[int]int, error)

		// ToggleEnrollment atomically deletes the (student, course) enrollment if it exists, or creates it otherwise.
		// It reports whether the student is enrolled afterwards.
		ToggleEnrollment(ctx context.Context, studentID, courseID int) (bool, error)
		// QueryEnrollments supports Filter.Scope and Filter.CourseID.
		QueryEnrollments(ctx context.Context, filter Filter, opts core.ListOptions) ([]Enrollment, int, error)
		IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error)
	}

	// UserGetter finds users by ID; user.Service is one.
	UserGetter interface {
		GetByID(ctx context.Context, id int) (user.User, error)
	}

	Service interface {
		CreateCourse(ctx context.Context, p policy.Principal, nc NewCourse) (CourseView, error)
		QueryCourses(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]CourseView, int, error)
		GetCourse(ctx context.Context, p policy.Principal, id int) (CourseView, error)
		UpdateCourse(ctx context.Context, p policy.Principal, id int, uc UpdateCourse) (CourseView, error)
		DeleteCourse(ctx context.Context, p policy.Principal, id int) error

		CreateModule(ctx context.Context, p policy.Principal, nm NewModule) (ModuleView, error)
		QueryModules(ctx context.Context, p policy.Principal, courseID int, opts core.ListOptions) ([]ModuleView, int, error)
		GetModule(ctx context.Context, p policy.Principal, id int) (ModuleView, error)
		UpdateModule(ctx context.Context, p policy.Principal, id int, um UpdateModule) (ModuleView, error)
		DeleteModule(ctx context.Context, p policy.Principal, id int) error

		CreateLesson(ctx context.Context, p policy.Principal, nl NewLesson) (Lesson, error)
		QueryLessons(ctx context.Context, p policy.Principal, moduleID int, opts core.ListOptions) ([]Lesson, int, error)
		GetLesson(ctx context.Context, p policy.Principal, id int) (Lesson, error)
		UpdateLesson(ctx context.Context, p policy.Principal, id int, ul UpdateLesson) (Lesson, error)
		DeleteLesson(ctx context.Context, p policy.Principal, id int) error

		ToggleEnrollment(ctx context.Context, p policy.Principal, courseID int) (ToggleResult, error)
		QueryEnrollments(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]Enrollment, int, error)
	}

	service struct {
		repo    Repository
		users   UserGetter
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users UserGetter, mailSvc core.EmailService, logger core.Logger) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &service{repo: repo, users: users, mailSvc: mailSvc, logger: logger}
}

func authorize(p policy.Principal, a policy.Action, r policy.Resource) error {
	return policy.Evaluate(p, a, r).Err()
}

// inScope maps objects the principal may not see to ErrNotFound.
func inScope(p policy.Principal, r policy.Resource, ownerID null.Int) error {
	if !policy.ScopeFor(p, r).Permits(ownerID.Int, 0) {
		return ErrNotFound
	}
	return nil
}

// Courses

func (svc *service) courseView(ctx context.Context, p policy.Principal, c Course) (CourseView, error) {
	modules, count, err := svc.repo.QueryModules(ctx, Filter{Scope: policy.Scope{Kind: policy.ScopeAll}, CourseID: c.ID}, core.ListOptions{})
	if err != nil {
		return CourseView{}, errors.Wrap(err, "querying course modules")
	}
	views, err := svc.moduleViews(ctx, modules)
	if err != nil {
		return CourseView{}, err
	}

	var enrolled bool
	if p.IsStudent() {
		if enrolled, err = svc.repo.IsEnrolled(ctx, p.ID, c.ID); err != nil {
			return CourseView{}, errors.Wrap(err, "checking enrollment")
		}
	}
	return CourseView{Course: c, CountModules: count, Modules: views, IsEnrolled: enrolled}, nil
}

func (svc *service) CreateCourse(ctx context.Context, p policy.Principal, nc NewCourse) (CourseView, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceCourse); err != nil {
		return CourseView{}, err
	}
	c, err := svc.repo.CreateCourse(ctx, Course{
		Title:       nc.Title,
		Description: nc.Description,
		OwnerID:     null.IntFrom(p.ID),
	})
	if err != nil {
		return CourseView{}, errors.Wrap(err, "creating course")
	}
	return svc.courseView(ctx, p, c)
}

func (svc *service) QueryCourses(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]CourseView, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceCourse); err != nil {
		return nil, 0, err
	}
	courses, count, err := svc.repo.QueryCourses(ctx, Filter{Scope: policy.ScopeFor(p, policy.ResourceCourse)}, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying courses")
	}
	views := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		v, err := svc.courseView(ctx, p, c)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, count, nil
}

func (svc *service) getCourse(ctx context.Context, p policy.Principal, a policy.Action, id int) (Course, error) {
	if err := authorize(p, a, policy.ResourceCourse); err != nil {
		return Course{}, err
	}
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	return c, inScope(p, policy.ResourceCourse, c.OwnerID)
}

func (svc *service) GetCourse(ctx context.Context, p policy.Principal, id int) (CourseView, error) {
	c, err := svc.getCourse(ctx, p, policy.ActionRetrieve, id)
	if err != nil {
		return CourseView{}, err
	}
	return svc.courseView(ctx, p, c)
}

func (svc *service) UpdateCourse(ctx context.Context, p policy.Principal, id int, uc UpdateCourse) (CourseView, error) {
	c, err := svc.getCourse(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return CourseView{}, err
	}
	if c, err = svc.repo.UpdateCourse(ctx, uc.apply(c)); err != nil {
		return CourseView{}, errors.Wrap(err, "updating course")
	}
	return svc.courseView(ctx, p, c)
}

func (svc *service) DeleteCourse(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getCourse(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// Modules

func (svc *service) moduleViews(ctx context.Context, modules []Module) ([]ModuleView, error) {
	ids := make([]int, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	counts, err := svc.repo.CountLessons(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons")
	}
	views := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, ModuleView{Module: m, CountLessons: counts[m.ID]})
	}
	return views, nil
}

func (svc *service) moduleView(ctx context.Context, m Module) (ModuleView, error) {
	views, err := svc.moduleViews(ctx, []Module{m})
	if err != nil {
		return ModuleView{}, err
	}
	return views[0], nil
}

// checkCourse validates that the referenced course exists and is visible to `p`.
func (svc *service) checkCourse(ctx context.Context, p policy.Principal, courseID int) error {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewFieldError("course", "invalid course")
		}
		return errors.Wrap(err, "getting course")
	}
	if inScope(p, policy.ResourceCourse, c.OwnerID) != nil {
		return core.NewFieldError("course", "invalid course")
	}
	return nil
}

func (svc *service) CreateModule(ctx context.Context, p policy.Principal, nm NewModule) (ModuleView, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceModule); err != nil {
		return ModuleView{}, err
	}
	if err := svc.checkCourse(ctx, p, nm.CourseID); err != nil {
		return ModuleView{}, err
	}
	m, err := svc.repo.CreateModule(ctx, Module{
		Title:       nm.Title,
		Description: nm.Description,
		CourseID:    nm.CourseID,
		OwnerID:     null.IntFrom(p.ID),
	})
	if err != nil {
		return ModuleView{}, errors.Wrap(err, "creating module")
	}
	return svc.moduleView(ctx, m)
}

func (svc *service) QueryModules(ctx context.Context, p policy.Principal, courseID int, opts core.ListOptions) ([]ModuleView, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceModule); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceModule), CourseID: courseID}
	modules, count, err := svc.repo.QueryModules(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying modules")
	}
	views, err := svc.moduleViews(ctx, modules)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (svc *service) getModule(ctx context.Context, p policy.Principal, a policy.Action, id int) (Module, error) {
	if err := authorize(p, a, policy.ResourceModule); err != nil {
		return Module{}, err
	}
	m, err := svc.repo.GetModule(ctx, id)
	if err != nil {
		return Module{}, err
	}
	return m, inScope(p, policy.ResourceModule, m.OwnerID)
}

func (svc *service) GetModule(ctx context.Context, p policy.Principal, id int) (ModuleView, error) {
	m, err := svc.getModule(ctx, p, policy.ActionRetrieve, id)
	if err != nil {
		return ModuleView{}, err
	}
	return svc.moduleView(ctx, m)
}

func (svc *service) UpdateModule(ctx context.Context, p policy.Principal, id int, um UpdateModule) (ModuleView, error) {
	m, err := svc.getModule(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return ModuleView{}, err
	}
	if um.CourseID != nil && *um.CourseID != m.CourseID {
		if err := svc.checkCourse(ctx, p, *um.CourseID); err != nil {
			return ModuleView{}, err
		}
	}
	if m, err = svc.repo.UpdateModule(ctx, um.apply(m)); err != nil {
		return ModuleView{}, errors.Wrap(err, "updating module")
	}
	return svc.moduleView(ctx, m)
}

func (svc *service) DeleteModule(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getModule(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteModule(ctx, id)
}

// Lessons

// checkModule validates that the referenced module, if any, exists and is visible to `p`.
func (svc *service) checkModule(ctx context.Context, p policy.Principal, moduleID null.Int) error {
	if !moduleID.Valid {
		return nil
	}
	m, err := svc.repo.GetModule(ctx, moduleID.Int)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewFieldError("module", "invalid module")
		}
		return errors.Wrap(err, "getting module")
	}
	if inScope(p, policy.ResourceModule, m.OwnerID) != nil {
		return core.NewFieldError("module", "invalid module")
	}
	return nil
}

func (svc *service) CreateLesson(ctx context.Context, p policy.Principal, nl NewLesson) (Lesson, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceLesson); err != nil {
		return Lesson{}, err
	}
	if err := svc.checkModule(ctx, p, nl.ModuleID); err != nil {
		return Lesson{}, err
	}
	l, err := svc.repo.CreateLesson(ctx, Lesson{
		Title:       nl.Title,
		Description: nl.Description,
		Image:       nl.Image,
		Video:       nl.Video,
		ModuleID:    nl.ModuleID,
		OwnerID:     null.IntFrom(p.ID),
	})
	return l, errors.Wrap(err, "creating lesson")
}

func (svc *service) QueryLessons(ctx context.Context, p policy.Principal, moduleID int, opts core.ListOptions) ([]Lesson, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceLesson); err != nil {
		return nil, 0, err
	}
	filter := Filter{Scope: policy.ScopeFor(p, policy.ResourceLesson), ModuleID: moduleID}
	lessons, count, err := svc.repo.QueryLessons(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying lessons")
	}
	return lessons, count, nil
}

func (svc *service) getLesson(ctx context.Context, p policy.Principal, a policy.Action, id int) (Lesson, error) {
	if err := authorize(p, a, policy.ResourceLesson); err != nil {
		return Lesson{}, err
	}
	l, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	return l, inScope(p, policy.ResourceLesson, l.OwnerID)
}

func (svc *service) GetLesson(ctx context.Context, p policy.Principal, id int) (Lesson, error) {
	return svc.getLesson(ctx, p, policy.ActionRetrieve, id)
}

func (svc *service) UpdateLesson(ctx context.Context, p policy.Principal, id int, ul UpdateLesson) (Lesson, error) {
	l, err := svc.getLesson(ctx, p, policy.ActionUpdate, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.ModuleID != nil && *ul.ModuleID != l.ModuleID {
		if err := svc.checkModule(ctx, p, *ul.ModuleID); err != nil {
			return Lesson{}, err
		}
	}
	l, err = svc.repo.UpdateLesson(ctx, ul.apply(l))
	return l, errors.Wrap(err, "updating lesson")
}

func (svc *service) DeleteLesson(ctx context.Context, p policy.Principal, id int) error {
	if _, err := svc.getLesson(ctx, p, policy.ActionDelete, id); err != nil {
		return err
	}
	return svc.repo.DeleteLesson(ctx, id)
}

// Enrollments

// ToggleEnrollment enrolls the student in the course, or withdraws them if they already are.
func (svc *service) ToggleEnrollment(ctx context.Context, p policy.Principal, courseID int) (ToggleResult, error) {
	if err := authorize(p, policy.ActionCreate, policy.ResourceEnrollment); err != nil {
		return ToggleResult{}, err
	}
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return ToggleResult{}, err
	}

	enrolled, err := svc.repo.ToggleEnrollment(ctx, p.ID, c.ID)
	if err != nil {
		return ToggleResult{}, errors.Wrap(err, "toggling enrollment")
	}
	if !enrolled {
		return ToggleResult{Enrolled: false, Message: msgWithdrawn}, nil
	}

	svc.notifyOwner(ctx, p.ID, c)
	return ToggleResult{Enrolled: true, Message: msgEnrolled}, nil
}

// notifyOwner emails the course owner about a new enrollment. Failures are logged, never returned.
func (svc *service) notifyOwner(ctx context.Context, studentID int, c Course) {
	if !c.OwnerID.Valid {
		return
	}
	owner, err := svc.users.GetByID(ctx, c.OwnerID.Int)
	if err != nil {
		svc.logger.Error("enrollment notice: getting course owner", errors.Wrap(err, "getting course owner"))
		return
	}
	student, err := svc.users.GetByID(ctx, studentID)
	if err != nil {
		svc.logger.Error("enrollment notice: getting student", errors.Wrap(err, "getting student"))
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.FullName(), Address: owner.Email}},
		Subject:      enrollmentNoticeSubject,
		TemplateName: enrollmentNoticeTmpl,
		TemplateData: EnrollmentNotice{
			CourseTitle:  c.Title,
			StudentName:  student.FullName(),
			StudentEmail: student.Email,
			OwnerEmail:   owner.Email,
		},
	})
}

func (svc *service) QueryEnrollments(ctx context.Context, p policy.Principal, opts core.ListOptions) ([]Enrollment, int, error) {
	if err := authorize(p, policy.ActionList, policy.ResourceEnrollment); err != nil {
		return nil, 0, err
	}
	enrollments, count, err := svc.repo.QueryEnrollments(ctx, Filter{Scope: policy.ScopeFor(p, policy.ResourceEnrollment)}, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, count, nil
}
