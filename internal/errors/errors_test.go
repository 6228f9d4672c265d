package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	// 测试创建基本错误
	err := New("test", "test message", nil, http.StatusBadRequest)
	if err.Type != "test" || err.Message != "test message" || err.Code != http.StatusBadRequest {
		t.Errorf("New() created incorrect error: %v", err)
	}

	// 测试创建带原因的错误
	cause := fmt.Errorf("original error")
	err = New("test", "test with cause", cause, http.StatusInternalServerError)
	if err.Cause != cause {
		t.Errorf("New() did not set cause correctly: %v", err)
	}

	// 测试错误消息格式
	expected := "test with cause: original error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if err.String() != "test: "+expected {
		t.Errorf("String() = %q, want type prefix", err.String())
	}
}

func TestErrorWrapping(t *testing.T) {
	original := fmt.Errorf("original error")
	wrapped := Wrap(original, "wrapped", "wrapped message", http.StatusBadRequest)

	if wrapped.Type != "wrapped" || wrapped.Message != "wrapped message" {
		t.Errorf("Wrap() created incorrect error: %v", wrapped)
	}

	if wrapped.Cause != original {
		t.Errorf("Wrap() did not set cause correctly")
	}

	// 包装 AppError 时保留类型与状态码
	appErr := New("app", "app error", nil, http.StatusNotFound)
	rewrapped := Wrap(appErr, "ignored", "new message", http.StatusBadRequest)

	if rewrapped.Type != "app" {
		t.Errorf("Wrap() did not preserve original AppError type: got %s, want %s",
			rewrapped.Type, appErr.Type)
	}

	if rewrapped.Message != "new message" {
		t.Errorf("Wrap() did not update message: got %s, want %s",
			rewrapped.Message, "new message")
	}

	if rewrapped.Code != appErr.Code {
		t.Errorf("Wrap() did not preserve original status code: got %d, want %d",
			rewrapped.Code, appErr.Code)
	}

	if !HasCause(rewrapped, appErr) {
		t.Errorf("Wrap() should keep the wrapped AppError in the chain")
	}

	if Wrap(nil, "x", "y", 0) != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestErrorTypeChecking(t *testing.T) {
	storageErr := Storage("save failed", nil)
	execErr := ExecutionFailed("Morning", fmt.Errorf("boom"))

	if !Is(storageErr, ErrTypeStorage) {
		t.Errorf("Is() failed to identify storage error")
	}

	if Is(storageErr, ErrTypeExecution) {
		t.Errorf("Is() incorrectly identified storage error as execution error")
	}

	if !Is(execErr, ErrTypeExecution) {
		t.Errorf("Is() failed to identify execution error")
	}

	if GetType(storageErr) != ErrTypeStorage {
		t.Errorf("GetType() returned incorrect type: got %s, want %s",
			GetType(storageErr), ErrTypeStorage)
	}

	stdErr := fmt.Errorf("standard error")
	if GetType(stdErr) != "unknown" {
		t.Errorf("GetType() for standard error should return 'unknown', got %s",
			GetType(stdErr))
	}

	if GetCode(nil) != http.StatusOK || GetCode(stdErr) != http.StatusInternalServerError {
		t.Errorf("GetCode() returned unexpected codes")
	}
}

func TestErrorUnwrapping(t *testing.T) {
	innermost := fmt.Errorf("innermost error")
	inner := Wrap(innermost, "inner", "inner error", http.StatusBadRequest)
	outer := Wrap(inner, "outer", "outer error", http.StatusInternalServerError)

	if unwrapped := outer.Unwrap(); unwrapped != inner {
		t.Errorf("Unwrap() did not return correct inner error")
	}

	if root := RootCause(outer); root != innermost {
		t.Errorf("RootCause() did not return innermost error")
	}
}

func TestDomainErrors(t *testing.T) {
	notFound := ErrShortcutNotFound("abc")
	if notFound.Type != ErrTypeNotFound || notFound.Code != http.StatusNotFound {
		t.Errorf("ErrShortcutNotFound() created error with wrong type or code: %s, %d",
			notFound.Type, notFound.Code)
	}
	if !strings.Contains(notFound.Error(), "shortcut not found") {
		t.Errorf("ErrShortcutNotFound() message = %q", notFound.Error())
	}

	if ErrDefaultGroupProtected.Type != ErrTypeValidation {
		t.Errorf("ErrDefaultGroupProtected has wrong type: %s", ErrDefaultGroupProtected.Type)
	}

	if !strings.Contains(ErrNoReleaseChannel.Error(), "Could not fetch a valid release") {
		t.Errorf("ErrNoReleaseChannel message changed: %q", ErrNoReleaseChannel.Error())
	}

	action := ActionFailed(1, "kill", fmt.Errorf("denied"))
	if action.Error() != "action #2 (kill) failed: denied" {
		t.Errorf("ActionFailed() message = %q", action.Error())
	}
}

func TestErrorUtilityFunctions(t *testing.T) {
	err1 := fmt.Errorf("error 1")
	err2 := fmt.Errorf("error 2")

	if joined := JoinErrors(err1); joined != err1 {
		t.Errorf("JoinErrors() with single error should return that error")
	}

	joined := JoinErrors(err1, err2)
	if joined == nil || !strings.Contains(joined.Error(), "error 2") {
		t.Errorf("JoinErrors() returned %v for multiple errors", joined)
	}

	if joined := JoinErrors(nil, nil); joined != nil {
		t.Errorf("JoinErrors() with all nil should return nil")
	}

	if wrapped := WrapIfErr(nil, "test", "message", http.StatusOK); wrapped != nil {
		t.Errorf("WrapIfErr() with nil should return nil")
	}

	if wrapped := WrapIfErr(err1, "test", "message", http.StatusBadRequest); wrapped == nil {
		t.Errorf("WrapIfErr() with non-nil error should return non-nil")
	}

	if Message(nil) != "" || Message(err1) != "error 1" {
		t.Errorf("Message() returned unexpected values")
	}

	if _, ok := AsAppError(err1); ok {
		t.Errorf("AsAppError() should fail for plain errors")
	}
}
