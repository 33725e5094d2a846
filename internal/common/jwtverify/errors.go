package jwtverify

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/smalltalk-feed/internal/common/errors"
)

var (
	ErrTokenMalformed = commonerrors.NewDomainError(
		"TOKEN_MALFORMED",
		commonerrors.CategoryAuth,
		http.StatusUnauthorized,
		"token is malformed",
	)

	ErrTokenBadSignature = commonerrors.NewDomainError(
		"TOKEN_BAD_SIGNATURE",
		commonerrors.CategoryAuth,
		http.StatusUnauthorized,
		"token signature is invalid",
	)

	ErrTokenIssuerMismatch = commonerrors.NewDomainError(
		"TOKEN_ISSUER_MISMATCH",
		commonerrors.CategoryAuth,
		http.StatusUnauthorized,
		"token issuer does not match",
	)

	ErrTokenSubjectMismatch = commonerrors.NewDomainError(
		"TOKEN_SUBJECT_MISMATCH",
		commonerrors.CategoryAuth,
		http.StatusUnauthorized,
		"token does not belong to this user",
	)
)
