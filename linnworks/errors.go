package linnworks

import "fmt"

// AuthError indicates the credential exchange with Linnworks was rejected
// or failed outright
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth error: %d %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("auth error: %s", e.Reason)
}

// UpstreamError indicates a non-retryable HTTP failure from a Linnworks
// endpoint during extraction
type UpstreamError struct {
	Status int
	Path   string
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s responded %d: %s", e.Path, e.Status, e.Body)
}
