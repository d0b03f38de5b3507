package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "app/internal/repository"
)

// 管理画面がフォームバリデーションに使う安定したコード。
const (
	CodeNotFound                   = "NOT_FOUND"
	CodeValidationError            = "VALIDATION_ERROR"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeInsufficientAvailableStock = "INSUFFICIENT_AVAILABLE_STOCK"
	CodeDuplicateReference         = "DUPLICATE_REFERENCE"
	CodeDuplicateKey               = "DUPLICATE_KEY"
	CodeConcurrencyConflict        = "CONCURRENCY_CONFLICT"
	CodeInternal                   = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func newUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
}

func newNotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, message)
}

func newValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, CodeValidationError, message)
}

func newDBError() error {
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
}

// repoのsentinelをHTTPErrorへ寄せる。リトライはしない（呼び出し側の判断）。
func translateRepoError(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newNotFound("not found")
	}
	if errors.Is(err, repo.ErrConflict) {
		return NewHTTPError(http.StatusConflict, CodeConcurrencyConflict, "concurrent update detected")
	}
	return newDBError()
}
