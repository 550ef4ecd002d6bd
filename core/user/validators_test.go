package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestValidatePassword(t *testing.T) {
	validate := newValidator()

	saved := commonPasswords
	commonPasswords = []string{"letmein123", "password1"} // sorted
	defer func() { commonPasswords = saved }()

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "a1b2c3", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "quiet meadow 42", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "31415926", wantTag: pwdNotAllNumTag},
		{name: "similar to email", pwd: "linus.torvalds", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "LetMeIn123", wantTag: pwdNoCommonTag},
		{name: "lowercase and digits", pwd: "quietmeadow42"},
		{name: "letters only", pwd: "quietmeadow"},
		{name: "mixed", pwd: "Qu!etMeadow42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{
				Email:           "linus.torvalds@test.cd",
				FirstName:       "Linus",
				Role:            RoleStudent,
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
			}
			err := validate.Struct(nu)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "error = %v; want validator.ValidationErrors", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, "password", verrs[0].Field())
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}
