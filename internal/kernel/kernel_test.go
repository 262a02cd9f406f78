package kernel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func memorySettings() config.Settings {
	return config.Settings{
		AppEnv:            "testing",
		RecordStore:       "memory",
		StorageDisk:       "memory",
		AuditLogDir:       "logs",
		QueueDriver:       "memory",
		CacheTTL:          time.Minute,
		WriteMode:         "if-match",
		JWTSecret:         "kernel-test",
		AdminEmail:        "admin@shop.test",
		AdminPassword:     "letmein",
		ReconcileInterval: time.Hour,
	}
}

func TestBootServesHealthAndRoutes(t *testing.T) {
	app, err := Boot(context.Background(), memorySettings())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	r, err := app.Router()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "data.status").String())

	url, err := r.URL("admin.orders.status", map[string]string{"id": "o1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/orders/o1/status", url)
}

func TestRouterNeedsSecret(t *testing.T) {
	s := memorySettings()
	s.JWTSecret = ""
	app, err := Boot(context.Background(), s)
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Router()
	assert.Error(t, err)
}

func TestBootRejectsUnknownQueueDriver(t *testing.T) {
	s := memorySettings()
	s.QueueDriver = "carrier-pigeon"
	_, err := Boot(context.Background(), s)
	assert.ErrorContains(t, err, "QUEUE_DRIVER")
}
