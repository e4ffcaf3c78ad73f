package testutil

import (
	"errors"
	"testing"

	apperrors "spendwise/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected code and
// returns it for further checks.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertAppErrorMessage checks both the code and the client-facing message.
func AssertAppErrorMessage(t *testing.T, err error, expectedCode, expectedMessage string) {
	t.Helper()

	appErr := AssertAppError(t, err, expectedCode)
	if appErr.Message != expectedMessage {
		t.Errorf("expected message %q, got %q", expectedMessage, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
