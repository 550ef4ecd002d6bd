package logsvc

import (
	"log"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every entry to a std logger.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// person identifies who triggered an entry: the account, or the principal when the account was not loaded.
type person struct {
	id, name, email string
}

// personOf reports whether `arg` designates a person; an anonymous principal designates nobody.
func personOf(arg interface{}) (person, bool) {
	switch v := arg.(type) {
	case user.User:
		return person{id: strconv.Itoa(v.ID), name: v.FullName(), email: v.Email}, true
	case policy.Principal:
		if !v.Authenticated {
			return person{}, true
		}
		return person{id: strconv.Itoa(v.ID), name: string(v.Role)}, true
	}
	return person{}, false
}

// split separates the person, if any, from the rollbar args (error, map[string]interface{}, *http.Request).
// Only the first person counts.
func split(msg string, args []interface{}) (person, bool, []interface{}) {
	var (
		who   person
		found bool
	)
	extras := make([]interface{}, 0, len(args)+1)
	extras = append(extras, msg)
	for _, arg := range args {
		if p, ok := personOf(arg); ok {
			if !found && p.id != "" {
				who, found = p, true
			}
			continue
		}
		extras = append(extras, arg)
	}
	return who, found, extras
}

func (l RollbarLogger) log(level string, msg string, args []interface{}) {
	who, found, extras := split(msg, args)
	if found {
		rollbar.SetPerson(who.id, who.name, who.email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, extras...)

	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range extras[1:] {
		l.std.Printf("%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
