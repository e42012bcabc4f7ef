package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := CORS()(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://example.com" {
		t.Errorf("Expected CORS origin header, got %s", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	if !strings.Contains(exposed, "OData-Version") {
		t.Errorf("Expected OData-Version in exposed headers, got %s", exposed)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for preflight request")
	})

	wrapped := CORS()(handler)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status %d for preflight, got %d", http.StatusNoContent, rec.Code)
	}

	allowMethods := rec.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allowMethods, "GET") {
		t.Errorf("Expected GET in allowed methods, got %s", allowMethods)
	}
	if strings.Contains(allowMethods, "POST") {
		t.Errorf("Read-only surface must not advertise POST, got %s", allowMethods)
	}

	allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(allowHeaders, "Accept") {
		t.Errorf("Expected Accept in allowed headers, got %s", allowHeaders)
	}

	if rec.Header().Get("Access-Control-Max-Age") == "" {
		t.Error("Expected Max-Age header for preflight")
	}
}

func TestCORSCustomConfig(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	config := CORSConfig{
		AllowedOrigins: []string{"http://example.com", "http://test.com"},
		AllowedMethods: []string{"GET"},
		ExposedHeaders: []string{"X-Custom-Header"},
		MaxAge:         3600,
	}

	wrapped := CORSWithConfig(config)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://test.com")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://test.com" {
		t.Errorf("Expected allowed origin echoed, got %s", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Expose-Headers") != "X-Custom-Header" {
		t.Errorf("Expected custom exposed header, got %s", rec.Header().Get("Access-Control-Expose-Headers"))
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"http://example.com"}
	wrapped := CORSWithConfig(config)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.com")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	// The request still runs; it just gets no CORS grant.
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Disallowed origin must not be granted")
	}
}

func TestIsOriginAllowed_WildcardSubdomain(t *testing.T) {
	allowed := []string{"*.example.com"}

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://api.example.com", true},
		{"https://deep.api.example.com", true},
		{"http://example.com", false},
		{"http://notexample.com", false},
	}

	for _, tt := range tests {
		if got := isOriginAllowed(tt.origin, allowed); got != tt.want {
			t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
