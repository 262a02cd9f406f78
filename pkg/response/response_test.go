package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestStatusFor(t *testing.T) {
	tests := map[error]int{
		fmt.Errorf("order: %w", record.ErrNotFound):  http.StatusNotFound,
		record.ErrDuplicateKey:                       http.StatusConflict,
		record.ErrTokenMismatch:                      http.StatusConflict,
		fmt.Errorf("get: %w", record.ErrUnavailable): http.StatusServiceUnavailable,
		errors.New("boom"):                           http.StatusInternalServerError,
	}
	for err, want := range tests {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestErrHidesServerDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	Err(w, r, errors.New("dsn password=hunter2 rejected"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", gjson.Get(w.Body.String(), "message").String())
}

func TestPaginatedEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	Paginated(w, []string{"a", "b"}, map[string]int{"page": 1})

	body := w.Body.String()
	assert.Equal(t, int64(200), gjson.Get(body, "status").Int())
	assert.Equal(t, "b", gjson.Get(body, "data.items.1").String())
	assert.Equal(t, int64(1), gjson.Get(body, "data.pagination.page").Int())
}
