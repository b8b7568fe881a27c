package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "invalid input keeps detail",
			err:      fmt.Errorf("%w: name is required", ErrInvalidInput),
			expected: "Error: invalid input: name is required",
		},
		{
			name:     "load failure hides cause",
			err:      fmt.Errorf("%w: disk I/O error", ErrLoadFailed),
			expected: "Error: failed to load local data (see logs for details)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("medication %q not found", "Aspirin")
	want := `Error: medication "Aspirin" not found`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}
