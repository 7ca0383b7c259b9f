// Package auth turns bearer tokens into callers and decides what a caller may
// do inside a project.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"github.com/thenoetrevino/projecthub/internal/models"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Options configures token verification. Exactly one of Secret or JWKSURL
// should be set; Secret selects HS256, JWKSURL selects RS256 with keys
// fetched and refreshed from the URL.
type Options struct {
	Secret   string
	JWKSURL  string
	Audience string
	Issuer   string
}

// Verifier validates bearer tokens.
type Verifier struct {
	jwks     *keyfunc.JWKS
	secret   []byte
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewVerifier builds a verifier, fetching the JWKS when one is configured.
func NewVerifier(opts Options) (*Verifier, error) {
	v := &Verifier{audience: opts.Audience, issuer: opts.Issuer}

	switch {
	case opts.JWKSURL != "":
		jwks, err := keyfunc.Get(opts.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("jwks: %w", err)
		}
		v.jwks = jwks
		v.parser = jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	case opts.Secret != "":
		v.secret = []byte(opts.Secret)
		v.parser = jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	default:
		return nil, errors.New("auth: either a jwt secret or a jwks url is required")
	}
	return v, nil
}

// NewHS256Verifier is a shortcut for shared-secret verification.
func NewHS256Verifier(secret, audience, issuer string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// Close stops background JWKS refreshes.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// CallerFromHeader validates an Authorization header value. Every failure
// wraps models.ErrUnauthorized.
func (v *Verifier) CallerFromHeader(header string) (models.Caller, error) {
	token, err := bearerToken(header)
	if err != nil {
		return models.Caller{}, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	caller, err := v.CallerFromToken(token)
	if err != nil {
		return models.Caller{}, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	return caller, nil
}

// CallerFromToken validates a raw JWT and returns the identity in its claims.
func (v *Verifier) CallerFromToken(token string) (models.Caller, error) {
	parsed, err := v.parser.Parse(token, v.keyFor)
	if err != nil {
		return models.Caller{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, errors.New("invalid claims")
	}

	now := time.Now().Add(time.Minute).Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return models.Caller{}, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return models.Caller{}, errors.New("token not valid yet")
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return models.Caller{}, errors.New("invalid audience")
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return models.Caller{}, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Caller{}, errors.New("missing sub")
	}

	caller := models.Caller{UserID: sub}
	for _, claim := range []string{"preferred_username", "name"} {
		if name, ok := claims[claim].(string); ok && name != "" {
			caller.Username = name
			break
		}
	}
	return caller, nil
}

func (v *Verifier) keyFor(t *jwt.Token) (any, error) {
	if v.jwks != nil {
		return v.jwks.Keyfunc(t)
	}
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return v.secret, nil
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadAuthorization
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
