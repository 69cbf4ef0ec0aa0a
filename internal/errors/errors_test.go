package errors

import (
	"fmt"
	"testing"
)

func TestRefcatError_Error(t *testing.T) {
	err := &RefcatError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "entry not found",
	}

	expected := "NOT_FOUND: entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("query is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "query is required" {
		t.Errorf("Message = %q, want %q", err.Message, "query is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("Routing/Dynamic routes")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "Routing/Dynamic routes" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "Routing/Dynamic routes")
	}
}

func TestNewDocumentTooLarge(t *testing.T) {
	err := NewDocumentTooLarge(4<<20, 5<<20)

	if err.Code != ErrDocumentTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrDocumentTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_bytes"] != int64(4<<20) {
		t.Errorf("Details[max_bytes] = %v, want %v", err.Details["max_bytes"], int64(4<<20))
	}
	if err.Details["actual_bytes"] != int64(5<<20) {
		t.Errorf("Details[actual_bytes] = %v, want %v", err.Details["actual_bytes"], int64(5<<20))
	}
}

func TestNewStructural(t *testing.T) {
	t.Run("with line", func(t *testing.T) {
		err := NewStructural(7, "entry before any category heading")

		if err.Code != ErrStructural {
			t.Errorf("Code = %q, want %q", err.Code, ErrStructural)
		}
		if err.Status != 422 {
			t.Errorf("Status = %d, want 422", err.Status)
		}
		if err.Message != "line 7: entry before any category heading" {
			t.Errorf("Message = %q", err.Message)
		}
		if err.Details["line"] != 7 {
			t.Errorf("Details[line] = %v, want 7", err.Details["line"])
		}
	})

	t.Run("without line", func(t *testing.T) {
		err := NewStructural(0, "bad document")

		if err.Message != "bad document" {
			t.Errorf("Message = %q, want %q", err.Message, "bad document")
		}
		if err.Details != nil {
			t.Errorf("Details = %v, want nil", err.Details)
		}
	})
}

func TestNewEmptyInput(t *testing.T) {
	err := NewEmptyInput("document is empty")

	if err.Code != ErrEmptyInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptyInput)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("export")

	if err.Code != ErrCancelled {
		t.Errorf("Code = %q, want %q", err.Code, ErrCancelled)
	}
	if err.Status != 499 {
		t.Errorf("Status = %d, want 499", err.Status)
	}
	if err.Message != "export cancelled" {
		t.Errorf("Message = %q, want %q", err.Message, "export cancelled")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("index build failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		// Message should be generic (not leak internal details)
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "index build failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "index build failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrStructural) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for plain error")
		}
	})

	t.Run("wrapped RefcatError", func(t *testing.T) {
		inner := NewStructural(3, "bad nesting")
		wrapped := fmt.Errorf("load doc.md: %w", inner)
		if !Is(wrapped, ErrStructural) {
			t.Error("Is() = false, want true for wrapped RefcatError")
		}
		if Is(wrapped, ErrEmptyInput) {
			t.Error("Is() = true, want false for wrong code on wrapped RefcatError")
		}
	})
}

func TestIsParseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"structural", NewStructural(1, "x"), true},
		{"empty input", NewEmptyInput("x"), true},
		{"wrapped empty input", fmt.Errorf("load: %w", NewEmptyInput("x")), true},
		{"not found", NewNotFound("x"), false},
		{"plain", fmt.Errorf("x"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsParseError(tt.err); got != tt.want {
				t.Errorf("IsParseError() = %v, want %v", got, tt.want)
			}
		})
	}
}
