package dispatch

import "github.com/edusarathi/content-api/internal/models"

// BackendEnvelope is the outcome of a single backend attempt. Exactly one of
// Ok/Err semantics applies: either Content is usable or Reason explains the
// failure. Executor methods return an envelope and never an error.
type BackendEnvelope struct {
	ok      bool
	content string
	usage   models.UsageStats
	reason  string
}

// OkEnvelope wraps a successful backend completion.
func OkEnvelope(content string, usage models.UsageStats) BackendEnvelope {
	return BackendEnvelope{ok: true, content: content, usage: usage}
}

// ErrEnvelope wraps a failed attempt with a diagnostic reason.
func ErrEnvelope(reason string) BackendEnvelope {
	return BackendEnvelope{reason: reason}
}

// Ok reports whether the attempt produced content.
func (e BackendEnvelope) Ok() bool { return e.ok }

// Content returns the completion text. Only meaningful when Ok.
func (e BackendEnvelope) Content() string { return e.content }

// Usage returns the backend's token accounting. Only meaningful when Ok.
func (e BackendEnvelope) Usage() models.UsageStats { return e.usage }

// Reason returns the failure diagnostic. Only meaningful when not Ok.
func (e BackendEnvelope) Reason() string { return e.reason }
