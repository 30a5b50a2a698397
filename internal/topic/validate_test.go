package topic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"valid topic", "Marketing Benefits in IT", nil},
		{"valid with surrounding space", "  Digital Transformation Strategy  ", nil},
		{"exactly ten characters", "ab cdefghi", nil},
		{"too short", "Tech", ErrTooShort},
		{"empty", "", ErrTooShort},
		{"whitespace only", "     ", ErrTooShort},
		{"nine characters", "ab cdefgh", ErrTooShort},
		{"single long word", "Supercalifragilistic", ErrTooFewWords},
		{"too long", strings.Repeat("word ", 25), ErrTooLong},
		{"multibyte counted as runes", strings.Repeat("数", 20) + " " + strings.Repeat("字", 20), nil},
		{"multibyte over rune limit", strings.Repeat("数", 60) + " " + strings.Repeat("字", 60), ErrTooLong},
		{"multibyte too short", "数字 化", ErrTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	assert.Equal(t, "Topic must be at least 10 characters long", ErrTooShort.Error())
	assert.Equal(t, "Please select a topic from the suggestions", ErrNotSuggested.Error())
}
