package preprocess

import (
	"testing"

	"github.com/benwelker/terse/internal/domain"
)

func TestTrimWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing spaces", "a   \nb\t\t", "a\nb"},
		{"crlf normalized", "a\r\nb", "a\nb"},
		{"blank runs capped at two", "a\n\n\n\n\nb", "a\n\n\nb"},
		{"leading and trailing blanks trimmed", "\n\na\n\n", "a"},
		{"already clean", "a\nb", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimWhitespace(tt.in, domain.PreprocessSettings{}); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
