package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/requestdata"
)

const testSecret = "test-secret"

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func testRouter(t *testing.T, captured *uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(mustTestLogger(t), testSecret)
	r := gin.New()
	r.GET("/probe", am.RequireIdentity(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd != nil {
			*captured = rd.UserID
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func signToken(t *testing.T, secret string, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRequireIdentity(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name       string
		decorate   func(*http.Request)
		wantStatus int
		wantUser   uuid.UUID
	}{
		{
			name: "bearer_jwt",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID.String()))
			},
			wantStatus: http.StatusNoContent,
			wantUser:   userID,
		},
		{
			name: "query_token",
			decorate: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", signToken(t, testSecret, userID.String()))
				r.URL.RawQuery = q.Encode()
			},
			wantStatus: http.StatusNoContent,
			wantUser:   userID,
		},
		{
			name: "x_user_id_header",
			decorate: func(r *http.Request) {
				r.Header.Set("X-User-ID", userID.String())
			},
			wantStatus: http.StatusNoContent,
			wantUser:   userID,
		},
		{
			name:       "no_identity",
			decorate:   func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong_secret",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", userID.String()))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "subject_not_uuid",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "not-a-uuid"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed_x_user_id",
			decorate: func(r *http.Request) {
				r.Header.Set("X-User-ID", "42")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "jwt_beats_x_user_id",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID.String()))
				r.Header.Set("X-User-ID", uuid.New().String())
			},
			wantStatus: http.StatusNoContent,
			wantUser:   userID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var captured uuid.UUID
			router := testRouter(t, &captured)

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			tc.decorate(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusNoContent && captured != tc.wantUser {
				t.Fatalf("resolved user=%s, want %s", captured, tc.wantUser)
			}
		})
	}
}
