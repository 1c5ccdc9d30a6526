package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, svc *Service) (*httptest.ResponseRecorder, Status) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", svc.Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return rec, st
}

func TestHealthUp(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return nil }), "redis", "openai", "gpt-4o")

	rec, st := serve(t, svc)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, st.OK)
	require.Equal(t, "up", st.Checks["redis"])
	require.Equal(t, "gpt-4o", st.Model)
}

func TestHealthCacheDownIs503(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), "", "openai", "gpt-4o")

	rec, st := serve(t, svc)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.False(t, st.OK)
	require.Equal(t, "down", st.Checks["cache"])
}

func TestHealthWithoutCache(t *testing.T) {
	rec, st := serve(t, NewService(nil, "", "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, st.OK)
	require.Empty(t, st.Checks)
}
