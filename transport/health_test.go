package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"chat","version":"2.0.0"}`))
	}))
	defer srv.Close()

	h, err := CheckHealth(t.Context(), testBackend(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if !h.Healthy() || h.Status != "healthy" || h.Fields["version"] != "2.0.0" {
		t.Errorf("health = %+v", h)
	}
}

func TestCheckHealthUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("warming up"))
	}))
	defer srv.Close()

	c := testBackend(srv.URL)
	c.HealthPath = "/healthz"
	h, err := CheckHealth(t.Context(), c)
	if err != nil {
		t.Fatal(err)
	}
	if h.Healthy() || h.StatusCode != http.StatusServiceUnavailable || h.Status != "warming up" {
		t.Errorf("health = %+v", h)
	}
}

func TestCheckHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := CheckHealth(t.Context(), testBackend(url)); err == nil {
		t.Fatal("expected error")
	}

	if _, err := CheckHealth(t.Context(), testBackend("")); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
