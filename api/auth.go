package api

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

const (
	envLocalAuthMode   = "LOCAL_AUTH_MODE"
	envLocalAuthSecret = "LOCAL_AUTH_SHARED_SECRET"
)

// Auth validates incoming bearer tokens. With neither a JWKS nor a local
// shared secret configured the API runs open and every request passes as
// anonymous; sign-in then belongs entirely to the frontend.
type Auth struct {
	JWKS       *keyfunc.JWKS
	Audience   string
	Issuer     string
	TestMode   bool
	TestSecret []byte

	parser *jwt.Parser
}

// NewAuth creates a new Auth instance. LOCAL_AUTH_MODE=hs256 switches to a
// shared-secret mode for local runs without an identity provider.
func NewAuth(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	a := &Auth{JWKS: jwks, Audience: audience, Issuer: issuer}

	if mode := strings.ToLower(os.Getenv(envLocalAuthMode)); mode != "" {
		switch mode {
		case "hs256":
			secret := os.Getenv(envLocalAuthSecret)
			if secret == "" {
				panic("LOCAL_AUTH_SHARED_SECRET must be set when LOCAL_AUTH_MODE=hs256")
			}
			a.TestMode = true
			a.TestSecret = []byte(secret)
		default:
			panic("unsupported LOCAL_AUTH_MODE value")
		}
	}

	if a.TestMode {
		a.parser = jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	} else {
		a.parser = jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	}
	return a
}

// Enabled reports whether requests must carry a bearer token.
func (a *Auth) Enabled() bool {
	return a != nil && (a.TestMode || a.JWKS != nil)
}

// UserIDFromAuthHeader extracts the caller identity from the Authorization
// header.
func (a *Auth) UserIDFromAuthHeader(h string) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	token, err := bearerTokenFromHeader(h)
	if err != nil {
		return "", err
	}
	return a.userIDFromToken(token)
}

func (a *Auth) userIDFromToken(token string) (string, error) {
	var parsed *jwt.Token
	var err error
	if a.TestMode {
		parsed, err = a.parser.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return a.TestSecret, nil
		})
	} else {
		parsed, err = a.parser.Parse(token, a.JWKS.Keyfunc)
	}
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return "", errors.New("token not valid yet")
	}
	if !claims.VerifyIssuedAt(now, false) {
		return "", errors.New("token used before issued")
	}
	if a.Audience != "" && !claims.VerifyAudience(a.Audience, false) {
		return "", errors.New("invalid audience")
	}
	if a.Issuer != "" && !claims.VerifyIssuer(a.Issuer, false) {
		return "", errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}
