package server

import (
	"fmt"
	"html"
	"net/http"
	"sync"

	"github.com/kvasen/spotnow/internal/shared"
)

// closingPage is the minimal HTML page returned for every redirect
// outcome. It closes its own tab after a couple of seconds.
const closingPage = `<script>setTimeout(function() {window.close();}, 2000);</script>%s`

// CallbackResult is the outcome of one authorization redirect: either an
// authorization code or a specific failure, never both and never partial.
type CallbackResult struct {
	Code string
	err  error
}

func (c CallbackResult) Error() error {
	return c.err
}

// CallbackHandler captures the authorization code from the OAuth
// redirect. Implements the [Handler] interface for registration with a
// Router.
//
// Exactly one redirect is honored per flow. The response is always a 200
// with a self-closing HTML page regardless of outcome; the outcome itself
// is delivered once through the result channel.
type CallbackHandler struct {
	path       string
	state      string
	resultChan chan CallbackResult
	once       sync.Once
	mu         sync.Mutex
	done       bool
}

// NewCallbackHandler creates a handler serving the given callback path,
// validating redirects against the expected CSRF state token.
func NewCallbackHandler(path, state string) *CallbackHandler {
	return &CallbackHandler{
		path:       path,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the authorization redirect.
//
// An `error` query parameter, a missing `code`, and a state token that
// doesn't exactly match the expected one are each distinct failures; the
// handler never falls back silently between them.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.done = true
	h.mu.Unlock()

	q := r.URL.Query()

	var result CallbackResult
	var message string
	switch {
	case q.Get("error") != "":
		result.err = fmt.Errorf("%w: provider reported %q", shared.ErrAuthFailed, q.Get("error"))
		message = "Authentication failed: " + html.EscapeString(q.Get("error"))
	case q.Get("code") == "":
		result.err = shared.ErrMissingCode
		message = "Authentication failed: missing authorization code."
	case q.Get("state") != h.state:
		result.err = shared.ErrStateMismatch
		message = "Authentication failed: state mismatch."
	default:
		result.Code = q.Get("code")
		message = "Authentication successful."
	}

	h.send(result)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, closingPage, message)
}

// send delivers the result through the channel (only once).
func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
