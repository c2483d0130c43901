package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recordgate/internal/platform/config"
)

func TestNewUsesRequestBudget(t *testing.T) {
	srv := New(config.Server{Addr: ":9090", RequestTimeout: 2 * time.Second}, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 7*time.Second, srv.WriteTimeout)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}
