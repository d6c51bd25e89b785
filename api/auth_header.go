package api

import (
	"errors"
	"strings"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const bearerPrefix = "Bearer "

func bearerTokenFromHeader(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errMissingAuthorization
	}
	if len(trimmed) <= len(bearerPrefix) || !strings.HasPrefix(trimmed, bearerPrefix) {
		return "", errBadAuthorization
	}
	token := trimmed[len(bearerPrefix):]
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
