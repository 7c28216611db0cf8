package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestEngineError_Format(t *testing.T) {
	err := New(ErrCategoryQuery, CodeParseError, "bad condition")
	want := "[QUERY:PARSE_ERROR] bad condition"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	cause := stderrors.New("boom")
	wrapped := Wrap(ErrCategoryStorage, CodeUploadFailed, "upload", cause)
	want = "[STORAGE:UPLOAD_FAILED] upload: boom"
	if wrapped.Error() != want {
		t.Errorf("got %q, want %q", wrapped.Error(), want)
	}
}

func TestEngineError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCategoryJournal, CodeAppendFailed, "append", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestEngineError_IsMatchesCategoryAndCode(t *testing.T) {
	a := New(ErrCategoryIndex, CodeKeyNotFound, "a")
	b := New(ErrCategoryIndex, CodeKeyNotFound, "different message")
	c := New(ErrCategoryIndex, CodeIndexAbsent, "c")

	if !stderrors.Is(a, b) {
		t.Error("same category and code should match")
	}
	if stderrors.Is(a, c) {
		t.Error("different code should not match")
	}
}

func TestIsDegraded(t *testing.T) {
	if !IsDegraded(NewValidationError(CodeTypeMismatch, "bad tuple")) {
		t.Error("validation errors are degraded")
	}
	if !IsDegraded(NewIntegrityError(CodeForeignKeyViolation, "dangling")) {
		t.Error("integrity errors are degraded")
	}
	if IsDegraded(NewQueryError(CodeParseError, "bad")) {
		t.Error("query errors are hard failures")
	}
	if IsDegraded(stderrors.New("plain")) {
		t.Error("plain errors are not degraded")
	}

	// The flag survives wrapping.
	wrapped := fmt.Errorf("context: %w", NewValidationError(CodeArityMismatch, "short"))
	if !IsDegraded(wrapped) {
		t.Error("degraded flag should survive fmt.Errorf wrapping")
	}
}

func TestGetCategoryAndCode(t *testing.T) {
	err := NewStorageError(CodeDownloadFailed, "get", nil)
	if GetCategory(err) != ErrCategoryStorage {
		t.Errorf("got category %q", GetCategory(err))
	}
	if GetCode(err) != CodeDownloadFailed {
		t.Errorf("got code %q", GetCode(err))
	}

	if GetCategory(stderrors.New("plain")) != "" || GetCode(stderrors.New("plain")) != "" {
		t.Error("plain errors carry no category or code")
	}
}
