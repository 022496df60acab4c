package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "socialgraph/backend/pkg/errors"
)

func TestObserveTx(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTx("write", 10*time.Millisecond, nil)
	m.ObserveTx("write", 20*time.Millisecond, apperrors.NewConflict("users are already friends"))
	m.ObserveTx("read", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 3, testutil.CollectAndCount(m.txDuration))
	assert.Equal(t, "conflict", outcome(apperrors.NewConflict("x")))
	assert.Equal(t, "store_failure", outcome(apperrors.NewStoreFailure(apperrors.StoreTimeout, "run", nil)))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/posts/:postId", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/posts/"+id, nil)
		router.ServeHTTP(w, req)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nowhere", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/posts/:postId", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}
