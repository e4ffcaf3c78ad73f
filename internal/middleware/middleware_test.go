package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(tm *TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(tm.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "username": c.GetString(UsernameKey)})
	})
	return r
}

func doRequest(r *gin.Engine, method, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestTokenManagerMiddleware(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &models.User{Base: models.Base{ID: "0190a000-0000-7000-8000-000000000001"}, Username: "alice"}

	valid, err := tm.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	expiredManager := NewTokenManager("test-secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	forged, err := NewTokenManager("other-secret", time.Hour).Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid_token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Token " + valid, wantStatus: http.StatusUnauthorized},
		{name: "expired_token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
	}

	r := setupAuthRouter(tm)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				body := parseBody(t, rec)
				if body["user_id"] != user.ID || body["username"] != "alice" {
					t.Errorf("unexpected context values: %v", body)
				}
				return
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrImportFailed, errors.New("disk full")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	t.Run("app_error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))

		if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "IMPORT_FAILED" {
			t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("bind_error", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/bind", func(c *gin.Context) {
			_ = c.Error(errors.New("year must be a number")).SetType(gin.ErrorTypeBind)
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bind", http.NoBody))

		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
			t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("already_written", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/written", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"ok": false})
			_ = c.Error(errors.New("late"))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/written", http.NoBody))

		if rec.Code != http.StatusConflict {
			t.Errorf("expected handler status to win, got %d", rec.Code)
		}
	})

	t.Run("unexpected_error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))

		if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL_ERROR" {
			t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := doRequest(r, http.MethodOptions, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
}

func TestRequestLogging(t *testing.T) {
	t.Run("assigns a request ID", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestLogging())
		r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := doRequest(r, http.MethodGet, "")
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("keeps the caller's request ID", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestLogging())
		r.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(RequestIDKey))
		})

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Header().Get("X-Request-ID") != "abc-123" {
			t.Errorf("expected echoed request ID, got %q", rec.Header().Get("X-Request-ID"))
		}
		if rec.Body.String() != "abc-123" {
			t.Errorf("expected request ID in context, got %q", rec.Body.String())
		}
	})
}
