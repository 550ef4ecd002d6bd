package core

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/Tatyana-Kavardaeva/My-LMS/fs"
)

func TestParseEmailTemplates(t *testing.T) {
	for _, fname := range []string{"layout.txt", "layout.gohtml"} {
		_, err := fs.Stat(appfs.FS, emailTemplatesDir+"/"+fname)
		require.NoError(t, err, "%s must be embedded", fname)
	}

	require.NoError(t, ParseEmailTemplates(true))
	for _, name := range []string{"enrollment_notice", "password_reset"} {
		entry, ok := templates[name]
		require.True(t, ok, "template %q not parsed", name)
		assert.NotNil(t, entry.text, name)
		assert.NotNil(t, entry.html, name)
	}
	assert.NotContains(t, templates, emailLayout)
}

func TestEmailMessage_Render(t *testing.T) {
	msg := &EmailMessage{
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{"Name": "Ada", "UID": "MQ", "Token": "abc-def"},
	}
	require.NoError(t, msg.Render("http://lms.test"))

	link := "http://lms.test/password-reset/MQ/abc-def"
	assert.Contains(t, msg.TextContent, link)
	assert.Contains(t, msg.TextContent, "Hello Ada")
	assert.Contains(t, msg.HTMLContent, link)
	assert.Contains(t, msg.HTMLContent, "<!DOCTYPE html>")

	unknown := &EmailMessage{TemplateName: "nope"}
	assert.Error(t, unknown.Render("http://lms.test"))

	plain := &EmailMessage{BodyStr: "hi"}
	require.NoError(t, plain.Render("http://lms.test"))
	assert.Equal(t, "hi", plain.TextContent)
	assert.Empty(t, plain.HTMLContent)
}
