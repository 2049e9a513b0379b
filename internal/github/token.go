package github

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// appTokenLifetime is the validity window GitHub allows for app JWTs.
const appTokenLifetime = 10 * time.Minute

// SignAppToken creates the short-lived RS256 assertion used to authenticate
// as the GitHub App itself. This is distinct from authenticating as an
// installation; the returned token is only good for exchanging into an
// installation access token.
// https://docs.github.com/apps/building-github-apps/authenticating-with-github-apps
func SignAppToken(privateKeyPEM, appID string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", &SigningError{Err: err}
	}

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appTokenLifetime)),
		Issuer:    appID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return token, nil
}
