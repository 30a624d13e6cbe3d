package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string // Descriptive name for test output
		err       error  // The error to test
		target    error  // What we expect it to match
		wantMatch bool   // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("plant", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("ownerId", "owner id is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("plant", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not your plant"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable(errors.New("dial tcp: timeout"), "store unreachable"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("plant", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("name", "too long"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// Wrapping an AppError with fmt.Errorf("%w") must keep the sentinel
// reachable — this is how service-layer errors travel to the handlers.
func TestErrorsIs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("adding plant: %w", NotFound("plant", "xyz"))
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped NotFound should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should extract the *AppError from the chain")
	}
	if appErr.Message != "plant not found with id xyz" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestAppError_Error(t *testing.T) {
	err := ValidationFailed("care.water", "care description too long")
	if err.Error() != "care description too long" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Field != "care.water" {
		t.Errorf("Field = %q", err.Field)
	}
}
