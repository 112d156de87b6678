package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	id, path, scope := ValidateNodeID, ValidatePath, ValidateCacheScope
	tests := []struct {
		name  string
		check func(string) error
		in    string
		code  Code // "" when valid
	}{
		{"id", id, "task-a", ""},
		{"id uuid", id, "n8f3c1a2b9d0e4f7a6b5c4d3e2f1a0b9c", ""},
		{"id unicode", id, "prüfen", ""},
		{"id empty", id, "", ErrCodeInvalidGraph},
		{"id too long", id, strings.Repeat("a", 257), ErrCodeInvalidGraph},
		{"id newline", id, "a\nb", ErrCodeInvalidGraph},
		{"id quote", id, `say "hi"`, ErrCodeInvalidGraph},
		{"id backslash", id, `a\b`, ErrCodeInvalidGraph},

		{"path relative", path, "out/order.layout.json", ""},
		{"path absolute", path, "/tmp/order.svg", ""},
		{"path empty", path, "", ErrCodeInvalidPath},
		{"path too long", path, strings.Repeat("a", 501), ErrCodeInvalidPath},
		{"path nul", path, "a\x00b", ErrCodeInvalidPath},

		{"scope empty", scope, "", ""},
		{"scope tenant", scope, "tenant.a:", ""},
		{"scope leading colon", scope, ":x", ErrCodeInvalidInput},
		{"scope space", scope, "flow tower", ErrCodeInvalidInput},
		{"scope too long", scope, strings.Repeat("a", 129), ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.in)
			if got := GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}
