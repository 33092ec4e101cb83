package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "Alice", "Alice"},
		{"exact", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"long ascii", strings.Repeat("a", 51), strings.Repeat("a", 50)},
		{"multibyte", strings.Repeat("日", 55), strings.Repeat("日", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TruncateDisplayName(tt.input))
		})
	}
}
