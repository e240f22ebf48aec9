package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/kiosk/internal/shared"
)

// Exchanger trades an authorization code for stored tokens. Implemented by auth.Manager.
type Exchanger interface {
	Exchange(ctx context.Context, code string) error
}

// OAuthResult is the outcome of one authorization redirect. Err is nil on success.
type OAuthResult struct {
	Err error
}

// OAuthHandler handles the authorization code redirect.
type OAuthHandler struct {
	exchanger  Exchanger
	state      string
	resultChan chan OAuthResult
	once       sync.Once
	mu         sync.Mutex
	handled    bool
}

// NewOAuthHandler creates a handler expecting the given state value.
//
// state should come from shared.GenerateState.
func NewOAuthHandler(exchanger Exchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /callback"}
}

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .container { text-align: center; background: #1e1e1e; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

type resultView struct {
	Title, Message, Color string
}

// ServeHTTP validates the redirect, exchanges the code and reports the outcome once.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	q := r.URL.Query()

	if q.Get("state") != h.state {
		h.Send(OAuthResult{Err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		h.render(w, http.StatusBadRequest, resultView{"Authorization Failed", "Invalid state parameter.", "#e22134"})
		return
	}

	if errParam := q.Get("error"); errParam != "" {
		h.Send(OAuthResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthDenied, errParam)})
		h.render(w, http.StatusBadRequest, resultView{"Authorization Failed", "Spotify reported: " + errParam, "#e22134"})
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Send(OAuthResult{Err: fmt.Errorf("%w: no authorization code", shared.ErrAuthFailed)})
		h.render(w, http.StatusBadRequest, resultView{"Authorization Failed", "No authorization code received.", "#e22134"})
		return
	}

	if err := h.exchanger.Exchange(r.Context(), code); err != nil {
		h.Send(OAuthResult{Err: err})
		h.render(w, http.StatusInternalServerError, resultView{"Authorization Failed", "Token exchange failed.", "#e22134"})
		return
	}

	h.Send(OAuthResult{})
	h.render(w, http.StatusOK, resultView{"Connected to Spotify", "You can close this window and return to the kiosk.", "#1DB954"})
}

func (h *OAuthHandler) render(w http.ResponseWriter, status int, view resultView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	resultPage.Execute(w, view)
}

// Send delivers result if none has been delivered yet.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
