package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/Tatyana-Kavardaeva/My-LMS/apps/api/echo"
	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/material"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/quiz"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
	"github.com/Tatyana-Kavardaeva/My-LMS/services/email"
	inmem "github.com/Tatyana-Kavardaeva/My-LMS/storage/database/inmem"
	"github.com/Tatyana-Kavardaeva/My-LMS/tests"
)

var (
	errMissingToken  = httpErr{Error: "missing or malformed jwt"}
	errNoAccess      = httpErr{Error: "you have no access to this resource"}
	errInsufficient  = httpErr{Error: "you do not have permission to perform this action"}
	errNoResultRead  = httpErr{Error: "you have no access to this result"}
	errNotFound      = httpErr{Error: "not found"}
	errPermDenied    = httpErr{Error: "permission denied"}
	errDeactivated   = httpErr{Error: "account deactivated"}
	errAuthFailed    = httpErr{Error: "authentication failed"}
	errInvalidPage   = httpErr{Error: "invalid page"}
	errDeleteSelf    = httpErr{Error: "you cannot delete your own account"}
	errTestCompleted = map[string]string{"test": "test already completed"}
)

func TestMain(m *testing.M) {
	user.LoadCommonPasswords(testutil.NewLogger(core.NewTestConfig()))
	os.Exit(m.Run())
}

type testApp struct {
	conf     *core.Config
	server   *Server
	usrRepo  user.Repository
	matRepo  material.Repository
	quizRepo quiz.Repository
	mailSvc  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db := inmem.NewDB()
	usrRepo := inmem.NewUserRepository(db)
	matRepo := inmem.NewMaterialRepository(db)
	quizRepo := inmem.NewQuizRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		MaterialSvc:    material.NewService(matRepo, usrSvc, mailSvc, logger),
		QuizSvc:        quiz.NewService(quizRepo, matRepo),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = server.Close() })

	return &testApp{
		conf:     conf,
		server:   server,
		usrRepo:  usrRepo,
		matRepo:  matRepo,
		quizRepo: quizRepo,
		mailSvc:  mailSvc,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves the request and returns the recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

type page struct {
	Count    int             `json:"count"`
	Next     null.String     `json:"next"`
	Previous null.String     `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// ids returns the `id` of each object of a list response.
func ids(t *testing.T, rec *httptest.ResponseRecorder) []int {
	var pg page
	unmarshal(t, rec, &pg)
	var objs []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(pg.Results, &objs))
	res := make([]int, 0, len(objs))
	for _, o := range objs {
		res = append(res, o.ID)
	}
	return res
}

// fixtures holds one user per role plus some content.
type fixtures struct {
	admin, teacher, teacher2, student, student2, roleless, inactive user.User

	adminToken, teacherToken, teacher2Token, studentToken, student2Token, rolelessToken, inactiveToken string

	course, course2 material.Course
}

func (app *testApp) loadFixtures(t *testing.T) fixtures {
	ctx := context.Background()
	f := fixtures{
		admin:    testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "Admin-pass123!", user.RoleAdmin, true),
		teacher:  testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", "Teacher-pass123!", user.RoleTeacher, true),
		teacher2: testutil.CreateUser(t, app.usrRepo, "Other", "teacher2@test.cd", "", user.RoleTeacher, true),
		student:  testutil.CreateUser(t, app.usrRepo, "Student", "student@test.cd", "Student-pass123!", user.RoleStudent, true),
		student2: testutil.CreateUser(t, app.usrRepo, "Pupil", "student2@test.cd", "", user.RoleStudent, true),
		roleless: testutil.CreateUser(t, app.usrRepo, "Nobody", "nobody@test.cd", "", user.RoleNone, true),
		inactive: testutil.CreateUser(t, app.usrRepo, "Gone", "gone@test.cd", "Gone-pass123!", user.RoleStudent, false),
	}
	f.adminToken = getToken(t, app.conf, f.admin)
	f.teacherToken = getToken(t, app.conf, f.teacher)
	f.teacher2Token = getToken(t, app.conf, f.teacher2)
	f.studentToken = getToken(t, app.conf, f.student)
	f.student2Token = getToken(t, app.conf, f.student2)
	f.rolelessToken = getToken(t, app.conf, f.roleless)
	f.inactiveToken = getToken(t, app.conf, f.inactive)

	var err error
	f.course, err = app.matRepo.CreateCourse(ctx, material.Course{Title: "Go 101", OwnerID: null.IntFrom(f.teacher.ID)})
	require.NoError(t, err)
	f.course2, err = app.matRepo.CreateCourse(ctx, material.Course{Title: "Rust 101", OwnerID: null.IntFrom(f.teacher2.ID)})
	require.NoError(t, err)
	return f
}

func Test_server_home(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to "+app.conf.AppName+" API!", rec.Body.String())
}
