package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/kiosk/internal/shared"
	tu "github.com/desertthunder/kiosk/internal/testing"
)

type fakeExchanger struct {
	codes []string
	err   error
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) error {
	f.codes = append(f.codes, code)
	return f.err
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code on valid callback", func(t *testing.T) {
		ex := &fakeExchanger{}
		h := NewOAuthHandler(ex, "s1")

		w := serve(h, "/callback?code=abc&state=s1")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Connected to Spotify") {
			t.Errorf("expected success page, got %s", w.Body.String())
		}
		if len(ex.codes) != 1 || ex.codes[0] != "abc" {
			t.Errorf("expected exchange with abc, got %v", ex.codes)
		}

		res, ok := <-h.Result()
		if !ok || res.Err != nil {
			t.Errorf("expected successful result, got %+v (ok=%v)", res, ok)
		}
	})

	t.Run("state mismatch fails without exchange", func(t *testing.T) {
		ex := &fakeExchanger{}
		h := NewOAuthHandler(ex, "s1")

		w := serve(h, "/callback?code=abc&state=other")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if len(ex.codes) != 0 {
			t.Error("expected no exchange")
		}
		if res := <-h.Result(); !errors.Is(res.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Err)
		}
	})

	t.Run("error parameter is a denial", func(t *testing.T) {
		ex := &fakeExchanger{}
		h := NewOAuthHandler(ex, "s1")

		serve(h, "/callback?error=access_denied&state=s1")
		res := <-h.Result()
		if !errors.Is(res.Err, shared.ErrAuthDenied) {
			t.Errorf("expected ErrAuthDenied, got %v", res.Err)
		}
		if !strings.Contains(res.Err.Error(), "access_denied") {
			t.Errorf("expected error to carry reason, got %v", res.Err)
		}
		if len(ex.codes) != 0 {
			t.Error("expected no exchange")
		}
	})

	t.Run("missing code", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "s1")
		serve(h, "/callback?state=s1")
		if res := <-h.Result(); !errors.Is(res.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Err)
		}
	})

	t.Run("exchange failure is reported", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{err: shared.ErrAuthFailed}, "s1")
		w := serve(h, "/callback?code=abc&state=s1")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if res := <-h.Result(); !errors.Is(res.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Err)
		}
	})

	t.Run("only the first callback is processed", func(t *testing.T) {
		ex := &fakeExchanger{}
		h := NewOAuthHandler(ex, "s1")

		serve(h, "/callback?code=abc&state=s1")
		w := serve(h, "/callback?code=def&state=s1")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for second callback, got %d", w.Code)
		}
		if len(ex.codes) != 1 {
			t.Errorf("expected one exchange, got %d", len(ex.codes))
		}

		count := 0
		for range h.Result() {
			count++
		}
		if count != 1 {
			t.Errorf("expected exactly one result, got %d", count)
		}
	})

	t.Run("Send after result is ignored", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "s1")
		h.Send(OAuthResult{Err: shared.ErrTimeout})
		h.Send(OAuthResult{})
		if res := <-h.Result(); !errors.Is(res.Err, shared.ErrTimeout) {
			t.Errorf("expected first result to win, got %v", res.Err)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes handler through middleware in order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("outer"), mw("inner"))
		r.Handler(NewOAuthHandler(&fakeExchanger{}, "s1"))

		w := serve(r, "/callback?code=abc&state=s1")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		if w := serve(r, "/ping"); w.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", w.Body.String())
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if w := serve(NewBasicRouter(), "/nope"); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RequestLogger omits query string", func(t *testing.T) {
		var buf strings.Builder
		logger := shared.NewLogger(&buf)

		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		serve(h, "/callback?code=secret")

		out := buf.String()
		if !strings.Contains(out, "/callback") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %s", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("expected code to be omitted from log")
		}
	})

	t.Run("Recoverer returns 500", func(t *testing.T) {
		h := Recoverer(tu.DiscardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		if w := serve(h, "/"); w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
	})
}
