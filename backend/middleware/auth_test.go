package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PhilHem/netlog/backend/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestRequireToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-token"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	handler := RequireToken(string(hash), okHandler())

	cases := map[string]int{
		"":                    http.StatusUnauthorized,
		"Bearer ":             http.StatusUnauthorized,
		"Bearer wrong":        http.StatusUnauthorized,
		"Basic s3cret-token":  http.StatusUnauthorized,
		"Bearer s3cret-token": http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest("POST", "/log", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("Authorization %q: expected %d, got %d", header, want, rec.Code)
		}
	}
}

func TestRequireToken_DisabledWithoutHash(t *testing.T) {
	handler := RequireToken("", okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/log", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected open endpoint, got %d", rec.Code)
	}
}

func TestHashToken(t *testing.T) {
	hash, err := HashToken("abc")
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("abc")) != nil {
		t.Error("Hash should verify the token")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/logs", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected generated uuid in context, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Error("Response should echo the request id")
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/logs", nil)
	req.Header.Set(RequestIDHeader, incoming)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != incoming {
		t.Errorf("Expected incoming id %s kept, got %s", incoming, seen)
	}

	req = httptest.NewRequest("GET", "/logs", nil)
	req.Header.Set(RequestIDHeader, "'; DROP TABLE logs;--")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "'; DROP TABLE logs;--" {
		t.Error("Invalid incoming ids should be replaced")
	}
}
