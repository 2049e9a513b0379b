package errmsg

import "net/http"

// Heroku deploy hook specific StatusError helpers surfaced by the handlers.
var (
	HookSecretNotConfigured = NewStatusError(http.StatusInternalServerError, "webhook secret not configured")
	HookInvalidSecret       = NewStatusError(http.StatusUnauthorized, "invalid auth token")
	HookInvalidPayload      = NewStatusError(http.StatusBadRequest, "invalid webhook payload")
)

// BaseRevisionLookupFailed wraps a failure to resolve the previous release's
// commit from the platform API.
func BaseRevisionLookupFailed(err error) StatusError {
	return NewStatusError(
		http.StatusBadGateway,
		"could not resolve base revision: "+err.Error(),
	)
}

// NotifyFailed wraps a pipeline failure into the hook response.
func NotifyFailed(err error) StatusError {
	return NewStatusError(
		http.StatusBadGateway,
		"deploy notification failed: "+err.Error(),
	)
}
