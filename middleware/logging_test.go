package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/templates/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "missing":
			c.JSON(http.StatusNotFound, gin.H{"status": "error"})
		case "broken":
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "success"})
		}
	})

	for _, id := range []string{"v4-template", "missing", "broken"} {
		req, _ := http.NewRequest(http.MethodGet, "/templates/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, "/templates/:id", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, http.MethodGet, fields["method"])
}
