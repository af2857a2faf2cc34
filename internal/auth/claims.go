// Package auth keeps the bearer token issued by the platform and reads the
// claims it carries.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when a token cannot be decoded as a JWT
var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the claims the portal reads from a bearer token
type Claims struct {
	UserID    string
	ExpiresAt *time.Time
}

// ParseClaims decodes the claims of token without verifying its signature.
// The platform is the token's audience; the portal only reads the user id
// and expiry to drive local state.
func ParseClaims(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrNotJWT
	}

	var out Claims
	for _, name := range []string{"user_id", "sub", "uid"} {
		if id := claimString(mc[name]); id != "" {
			out.UserID = id
			break
		}
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, nil
}

func claimString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}
