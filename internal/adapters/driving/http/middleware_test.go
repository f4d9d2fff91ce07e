package http

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"session token", "Bearer rigor-session-9f2c", "rigor-session-9f2c"},
		{"padded token", "Bearer   tok-1   ", "tok-1"},
		{"lowercase scheme", "bearer tok-2", "tok-2"},
		{"no header", "", ""},
		{"bare token without scheme", "tok-3", ""},
		{"basic auth rejected", "Basic YWRtaW46cmlnb3I=", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if got := extractBearerToken(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if GetAuthContext(context.Background()) != nil {
		t.Error("expected nil for context without auth")
	}

	authCtx := &domain.AuthContext{
		UserID: "user-7",
		Email:  "lead@decisionworks.io",
		Role:   domain.RoleMember,
	}
	ctx := context.WithValue(context.Background(), authContextKey, authCtx)

	got := GetAuthContext(ctx)
	if got == nil {
		t.Fatal("expected auth context to be returned")
	}
	if got.UserID != "user-7" || got.Role != domain.RoleMember {
		t.Errorf("unexpected auth context: %+v", got)
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	mockAuth := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			switch token {
			case "live-token":
				return &domain.AuthContext{UserID: "user-1", Role: domain.RoleMember}, nil
			case "stale-token":
				return nil, domain.ErrTokenExpired
			case "revoked-token":
				return nil, domain.ErrSessionNotFound
			default:
				return nil, errors.New("malformed token")
			}
		},
	}
	middleware := NewAuthMiddleware(mockAuth)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid session", "Bearer live-token", http.StatusOK, ""},
		{"expired session", "Bearer stale-token", http.StatusUnauthorized, "token expired"},
		{"logged-out session", "Bearer revoked-token", http.StatusUnauthorized, "session not found"},
		{"garbage token", "Bearer zzz", http.StatusUnauthorized, "invalid token"},
		{"no token", "", http.StatusUnauthorized, "missing authorization token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authCtx := GetAuthContext(r.Context())
				if authCtx == nil || authCtx.UserID != "user-1" {
					t.Errorf("expected user-1 on request context, got %+v", authCtx)
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/api/v1/workspaces", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate(handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("expected error %q in body %q", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	middleware := NewAuthMiddleware(&mockAuthService{})

	tests := []struct {
		name       string
		authCtx    *domain.AuthContext
		wantStatus int
	}{
		{"admin may purge", &domain.AuthContext{UserID: "u-1", Role: domain.RoleAdmin}, http.StatusOK},
		{"member may not", &domain.AuthContext{UserID: "u-2", Role: domain.RoleMember}, http.StatusForbidden},
		{"viewer may not", &domain.AuthContext{UserID: "u-3", Role: domain.RoleViewer}, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, called := okHandler()
			req := httptest.NewRequest("POST", "/api/v1/workspaces/ws-1/purge", nil)
			if tt.authCtx != nil {
				req = withAuthContext(req, tt.authCtx)
			}
			rr := httptest.NewRecorder()

			middleware.RequireAdmin(handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if *called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handler called = %v with status %d", *called, rr.Code)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole_ViewersReadOnly(t *testing.T) {
	middleware := NewAuthMiddleware(&mockAuthService{})
	writersOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleMember)

	tests := []struct {
		name       string
		role       domain.Role
		wantStatus int
	}{
		{"admin may sync", domain.RoleAdmin, http.StatusOK},
		{"member may sync", domain.RoleMember, http.StatusOK},
		{"viewer may not sync", domain.RoleViewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, called := okHandler()
			req := httptest.NewRequest("POST", "/api/v1/integrations/int-1/sync", nil)
			req = withAuthContext(req, &domain.AuthContext{UserID: "u-1", Role: tt.role})
			rr := httptest.NewRecorder()

			writersOnly(handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if *called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handler called = %v with status %d", *called, rr.Code)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole_NoContext(t *testing.T) {
	middleware := NewAuthMiddleware(&mockAuthService{})

	handler, called := okHandler()
	req := httptest.NewRequest("POST", "/api/v1/integrations", nil)
	rr := httptest.NewRecorder()

	middleware.RequireRole(domain.RoleAdmin)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
	if *called {
		t.Error("handler must not run without auth context")
	}
}

func TestLoggingMiddleware_LogsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	middleware := &LoggingMiddleware{logger: log.New(&buf, "", 0)}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"an-1"}`))
	})

	req := httptest.NewRequest("POST", "/api/v1/analyses", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 172.16.0.1")
	rr := httptest.NewRecorder()

	middleware.Handler(handler).ServeHTTP(rr, req)

	line := buf.String()
	for _, want := range []string{"POST", "/api/v1/analyses", "201", "13B", "10.1.2.3"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in log line %q", want, line)
		}
	}
}

func TestLoggingMiddleware_SkipsHealthEndpoints(t *testing.T) {
	var buf bytes.Buffer
	middleware := &LoggingMiddleware{logger: log.New(&buf, "", 0)}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		middleware.Handler(handler).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("expected %s to pass through, got %d", path, rr.Code)
		}
	}

	if buf.Len() != 0 {
		t.Errorf("expected no log output for health endpoints, got %q", buf.String())
	}
}

func TestRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	if got := remoteAddr(req); got != req.RemoteAddr {
		t.Errorf("expected peer address %q, got %q", req.RemoteAddr, got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := remoteAddr(req); got != "203.0.113.9" {
		t.Errorf("expected forwarded address, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	middleware := NewRecoveryMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil snapshot")
	})

	req := httptest.NewRequest("POST", "/api/v1/analyses/an-1/score", nil)
	rr := httptest.NewRecorder()

	middleware.Handler(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal server error") {
		t.Errorf("expected generic error body, got %q", rr.Body.String())
	}
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	middleware := NewCORSMiddleware([]string{"https://dashboard.decisionworks.io"})

	handler, _ := okHandler()
	req := httptest.NewRequest("GET", "/api/v1/analyses/an-1", nil)
	req.Header.Set("Origin", "https://dashboard.decisionworks.io")
	rr := httptest.NewRecorder()

	middleware.Handler(handler).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.decisionworks.io" {
		t.Errorf("expected origin echoed back, got %q", got)
	}
	// The dashboard reads export archive filenames from this header
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Errorf("expected Content-Disposition exposed, got %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	middleware := NewCORSMiddleware([]string{"*"})

	handler, called := okHandler()
	req := httptest.NewRequest("OPTIONS", "/api/v1/sources/upload", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()

	middleware.Handler(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", rr.Code)
	}
	if *called {
		t.Error("preflight must not reach the handler")
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allowed methods on preflight response")
	}
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	middleware := NewCORSMiddleware([]string{"https://dashboard.decisionworks.io"})

	handler, _ := okHandler()
	req := httptest.NewRequest("GET", "/api/v1/workspaces", nil)
	req.Header.Set("Origin", "https://not-our-frontend.example")
	rr := httptest.NewRecorder()

	middleware.Handler(handler).ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers for an unknown origin")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("request itself should still be served, got %d", rr.Code)
	}
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusConflict)
	_, _ = rw.Write([]byte("duplicate document"))

	if rw.statusCode != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rw.statusCode)
	}
	if rw.bytes != len("duplicate document") {
		t.Errorf("expected %d bytes recorded, got %d", len("duplicate document"), rw.bytes)
	}
}
