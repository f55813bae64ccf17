package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"8501":  ":8501",
		":8501": ":8501",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	h := http.NotFoundHandler()

	srv := newHTTPServer(":0", h, Config{})
	if srv.WriteTimeout != writeTimeout || srv.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("unexpected defaults: write=%v readHeader=%v", srv.WriteTimeout, srv.ReadHeaderTimeout)
	}

	srv = newHTTPServer(":0", h, Config{WriteTimeout: 5 * time.Minute})
	if srv.WriteTimeout != 5*time.Minute {
		t.Fatalf("write timeout override ignored: %v", srv.WriteTimeout)
	}
}

func TestWithCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "disabled", origins: nil, origin: "http://localhost:5173", want: ""},
		{name: "allowed origin", origins: []string{"http://localhost:5173"}, origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "other origin", origins: []string{"http://localhost:5173"}, origin: "http://evil.example", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := withCORS(ok, tc.origins)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tc.want)
			}
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d", w.Code)
			}
		})
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	var s Server
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of idle server: %v", err)
	}
}
