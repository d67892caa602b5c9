package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text", input: "Hello", want: "Hello"},
		{name: "apostrophe survives", input: "it's fine", want: "it's fine"},
		{name: "emoji survives", input: "Coffee break time ☕", want: "Coffee break time ☕"},
		{name: "script removed", input: "<script>alert(1)</script>hi", want: "hi"},
		{name: "tags stripped", input: "<b>bold</b> move", want: "bold move"},
		{name: "attribute payload removed", input: `<img src=x onerror="alert(1)">`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	require.NoError(t, ValidateDisplayName("Alice Johnson"))
	require.Error(t, ValidateDisplayName("   "))
	require.Error(t, ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLength+1)))
	require.NoError(t, ValidateDisplayName(strings.Repeat("é", MaxDisplayNameLength)))
}
