package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/smalltalk-feed/internal/common/errors"
)

var (
	ErrAuthorNotFound = commonerrors.NewDomainError(
		"AUTHOR_NOT_FOUND",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"post author does not exist",
	)

	ErrInvalidPage = commonerrors.NewDomainError(
		"INVALID_PAGE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"invalid page",
	)

	ErrPostNotFound = commonerrors.NewDomainError(
		"POST_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"post not found",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrUnknownAuthor = commonerrors.NewDomainError(
		"UNKNOWN_AUTHOR",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"author does not exist",
	)

	ErrUnauthorized = commonerrors.NewDomainError(
		"UNAUTHORIZED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid for this author",
	)

	ErrPersistenceFailed = commonerrors.NewDomainError(
		"PERSISTENCE_FAILED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"failed to save post",
	)

	ErrInvalidContent = commonerrors.NewDomainError(
		"INVALID_CONTENT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"post content must be non-empty and at most 1000 characters",
	)
)

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
