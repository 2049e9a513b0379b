package github

import "fmt"

// SigningError reports unusable key material or a failed RS256 signature.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return "could not sign app token: " + e.Err.Error()
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// AuthExchangeError reports a non-success status from the installation
// access-token endpoint.
type AuthExchangeError struct {
	Status int
	Body   string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("access token exchange returned status %d: %s", e.Status, e.Body)
}

// CompareError reports a non-success status from the commit comparison
// endpoint, e.g. an unknown revision or a revoked token.
type CompareError struct {
	Status int
	Body   string
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("commit comparison returned status %d: %s", e.Status, e.Body)
}
