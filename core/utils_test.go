package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Go 101", CleanString("  Go 101\n"))
	assert.Equal(t, "Ada@Test.cd", CleanString(" Ada@Test.cd "))
	assert.Equal(t, "ada@test.cd", CleanString(" Ada@Test.cd ", true))
	assert.Equal(t, "Ada", CleanString("Ada", false))
}

func TestContainsForbiddenWords(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{s: "Intro to Go", want: false},
		{s: "", want: false},
		{s: "Free CASINO bonus", want: true},
		{s: "Введение в криптовалюта", want: true},
		{s: "Cryptography basics", want: true},
		{s: "Полиция и право", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsForbiddenWords(tt.s))
		})
	}
}
