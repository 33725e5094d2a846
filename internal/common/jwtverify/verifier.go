package jwtverify

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/smalltalk-feed/internal/observability/metrics"
)

// UsernameClaim is the claim carrying the acting account. Tokens without it
// never match a username.
const UsernameClaim = "username"

type Claims struct {
	Issuer    string
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that is not after now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Verifier checks HS256 tokens against one shared secret and one issuer.
// It never rejects on expiry; callers read Claims.ExpiresAt and decide.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{
		secret: secret,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (v *Verifier) Verify(tokenString, expectedUsername string) (Claims, error) {
	claims, err := v.verify(tokenString, expectedUsername)
	if err != nil {
		metrics.JWTValidationsTotal.WithLabelValues("failed").Inc()
		return Claims{}, err
	}
	metrics.JWTValidationsTotal.WithLabelValues("ok").Inc()
	return claims, nil
}

func (v *Verifier) verify(tokenString, expectedUsername string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, mapClaims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			// A readable header and payload with an undecodable signature is a
			// damaged signature, not a damaged token.
			if hasReadableBody(tokenString) {
				return Claims{}, ErrTokenBadSignature.WithCause(err)
			}
			return Claims{}, ErrTokenMalformed.WithCause(err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrTokenBadSignature.WithCause(err)
		default:
			return Claims{}, ErrTokenMalformed.WithCause(err)
		}
	}

	issuer, _ := mapClaims.GetIssuer()
	if issuer != v.issuer {
		return Claims{}, ErrTokenIssuerMismatch
	}

	subject := usernameFrom(mapClaims)
	if subject != expectedUsername {
		return Claims{}, ErrTokenSubjectMismatch
	}

	result := Claims{Issuer: issuer, Subject: subject}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	return result, nil
}

func usernameFrom(claims jwt.MapClaims) string {
	username, _ := claims[UsernameClaim].(string)
	return username
}

// hasReadableBody reports whether the token has three segments whose header
// and payload both decode to JSON objects.
func hasReadableBody(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts[:2] {
		raw, err := base64.RawURLEncoding.DecodeString(part)
		if err != nil {
			return false
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return false
		}
	}
	return true
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}
