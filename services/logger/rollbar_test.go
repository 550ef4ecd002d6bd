package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

func TestSplit(t *testing.T) {
	usr := user.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@test.cd"}
	err := errors.New("boom")
	extra := map[string]interface{}{"course": 3}

	tests := []struct {
		name       string
		args       []interface{}
		wantPerson person
		wantFound  bool
		wantExtras []interface{}
	}{
		{name: "no args", wantExtras: []interface{}{"msg"}},
		{
			name: "user", args: []interface{}{err, usr, extra},
			wantPerson: person{id: "7", name: usr.FullName(), email: "ada@test.cd"}, wantFound: true,
			wantExtras: []interface{}{"msg", err, extra},
		},
		{
			name: "principal", args: []interface{}{policy.Principal{ID: 9, Role: user.RoleTeacher, Authenticated: true}, err},
			wantPerson: person{id: "9", name: "teacher"}, wantFound: true,
			wantExtras: []interface{}{"msg", err},
		},
		{
			name: "anonymous", args: []interface{}{policy.Anonymous(), err},
			wantExtras: []interface{}{"msg", err},
		},
		{
			name: "first person wins", args: []interface{}{usr, policy.Principal{ID: 9, Authenticated: true}},
			wantPerson: person{id: "7", name: usr.FullName(), email: "ada@test.cd"}, wantFound: true,
			wantExtras: []interface{}{"msg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			who, found, extras := split("msg", tt.args)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantPerson, who)
			assert.Equal(t, tt.wantExtras, extras)
		})
	}
}

func TestRollbarLogger_mirrorsToStd(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())
	logger.Enable(false)

	logger.Error("sending email", errors.New("connection refused"), user.User{ID: 1})
	logger.Info("started")

	assert.Equal(t, "[error] sending email\nconnection refused\n[info] started\n", buf.String())
}
