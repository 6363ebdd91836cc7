package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payhost-backend/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Debug *bool  `json:"debug" binding:"required"`
	Name  string `json:"name" binding:"max=5"`
}

func bind(t *testing.T, body string) (bool, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var target bindTarget
	return BindAndValidate(c, &target), w
}

func decodeDetails(t *testing.T, w *httptest.ResponseRecorder) []ValidationErrorDetail {
	t.Helper()
	var resp struct {
		Status int                 `json:"status"`
		Data   ValidationErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, DocumentationLink, resp.Data.Documentation)
	return resp.Data.Errors
}

func TestBindAndValidate(t *testing.T) {
	ok, _ := bind(t, `{"debug": false, "name": "ali"}`)
	assert.True(t, ok)

	ok, w := bind(t, `{"name": "alipay-sandbox"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decodeDetails(t, w)
	require.Len(t, details, 2)
	assert.Equal(t, "Debug", details[0].Field)
	assert.Equal(t, "not null", details[0].Expected)
	assert.Equal(t, "Name", details[1].Field)
	assert.Equal(t, "max 5", details[1].Expected)

	ok, w = bind(t, `{"debug": "yes"}`)
	assert.False(t, ok)
	details = decodeDetails(t, w)
	require.Len(t, details, 1)
	assert.Equal(t, "debug", details[0].Field)
	assert.Equal(t, "bool", details[0].Expected)

	ok, w = bind(t, `{not json`)
	assert.False(t, ok)
	details = decodeDetails(t, w)
	require.Len(t, details, 1)
	assert.Equal(t, "body", details[0].Field)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("lookup: %w", payment.ErrPluginNotFound), http.StatusNotFound},
		{payment.ErrUnknownPlatform, http.StatusBadRequest},
		{fmt.Errorf("%w: pid", payment.ErrMissingConfig), http.StatusBadRequest},
		{payment.ErrNotConfigurable, http.StatusBadRequest},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorStatus(tt.err), tt.err.Error())
	}

	status, resp := NewServiceErrorResponse(payment.ErrPluginNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Nil(t, resp.Data)
}

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("")
	_, err := GenerateToken("ops", "admin", time.Minute)
	assert.Error(t, err)

	SetJWTSecret("test-secret")
	token, err := GenerateToken("ops", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	ttl := TokenTTL(claims)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	SetJWTSecret("rotated")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateToken("ops", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"", "", true},
		{"Token abc", "", true},
		{"Bearer abc.def", "abc.def", false},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		got, err := ExtractToken(c)
		if tt.wantErr {
			assert.Error(t, err, tt.header)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtractTokenFromWebSocketSubprotocol(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newUpgrade := func(protocols string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/ws", nil)
		c.Request.Header.Set("Connection", "Upgrade")
		c.Request.Header.Set("Upgrade", "websocket")
		if protocols != "" {
			c.Request.Header.Set("Sec-WebSocket-Protocol", protocols)
		}
		return c
	}

	got, err := ExtractToken(newUpgrade("bearer, abc.def"))
	require.NoError(t, err)
	assert.Equal(t, "abc.def", got)

	_, err = ExtractToken(newUpgrade("chat"))
	assert.Error(t, err)

	_, err = ExtractToken(newUpgrade(""))
	assert.Error(t, err)

	// Plain requests never read the subprotocol header.
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Sec-WebSocket-Protocol", "bearer, abc.def")
	_, err = ExtractToken(c)
	assert.Error(t, err)
}
