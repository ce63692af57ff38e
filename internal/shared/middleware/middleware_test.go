package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelfkeeper/internal/members"
	"shelfkeeper/internal/shared/config"
	"shelfkeeper/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	engine := gin.New()
	chain := append([]gin.HandlerFunc{JWTAuthWithConfig(cfg)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c).String())
	})
	engine.GET("/me", chain...)
	return engine
}

func do(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_SetsIdentity(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateAccessToken(testSecret, userID, "reader@example.com", members.RoleMember, time.Minute)
	require.NoError(t, err)

	w := do(newEngine(), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestJWTAuth_Rejects(t *testing.T) {
	expired, err := GenerateAccessToken(testSecret, uuid.New(), "a@b.c", members.RoleMember, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := GenerateAccessToken("other-secret", uuid.New(), "a@b.c", members.RoleMember, time.Minute)
	require.NoError(t, err)

	tests := map[string]string{
		"missing header": "",
		"garbage":        "not-a-jwt",
		"expired":        expired,
		"wrong key":      wrongKey,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(newEngine(), token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	member, err := GenerateAccessToken(testSecret, uuid.New(), "m@x.y", members.RoleMember, time.Minute)
	require.NoError(t, err)
	admin, err := GenerateAccessToken(testSecret, uuid.New(), "a@x.y", members.RoleAdmin, time.Minute)
	require.NoError(t, err)

	engine := newEngine(RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(engine, member).Code)
	assert.Equal(t, http.StatusOK, do(engine, admin).Code)
}

func TestUserIDFromContext_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, UserIDFromContext(c))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRequestLogger_TagsRequestUserAndError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	userID := uuid.New()

	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(logger.NewWithWriter(&buf, "info")))
	engine.GET("/fail", func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		_ = c.Error(errors.New("ledger unavailable"))
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("X-Request-ID", "req-42")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "HTTP Request", record["msg"])
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, userID.String(), record["user_id"])
	assert.Equal(t, "ledger unavailable", record["error"])
	assert.Equal(t, float64(http.StatusInternalServerError), record["status"])
}
