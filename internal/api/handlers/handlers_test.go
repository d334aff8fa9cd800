package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/persona/internal/api"
	"github.com/your-org/persona/internal/fieldconfig"
	"github.com/your-org/persona/internal/service"
	"github.com/your-org/persona/internal/storage"
)

func newTestRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := service.NewPersonaService(store, fieldconfig.Default())
	return api.NewRouter(api.RouterConfig{
		APIKey:  apiKey,
		Service: svc,
		DB:      store,
	})
}

func perform(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func createPersona(t *testing.T, r *gin.Engine, body map[string]any) map[string]any {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/api/v1/personas", body)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decodeBody(t, w)
}

func TestCreatePersonaEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	created := createPersona(t, r, map[string]any{
		"name": "Ada",
		"demographic": map[string]any{
			"country": "DE",
			"age":     34,
		},
		"psychographic": map[string]any{
			"interests": []string{"chess"},
			"lifestyle": "urban",
		},
	})

	assert.NotZero(t, created["id"])
	assert.Equal(t, "Ada", created["name"])
	assert.NotEmpty(t, created["created_at"])

	demo, ok := created["demographic"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DE", demo["country"])

	psy, ok := created["psychographic"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "urban", psy["lifestyle"])

	// categories never written are absent from the document
	_, hasBehavioral := created["behavioral"]
	assert.False(t, hasBehavioral)
}

func TestCreatePersonaRejectsMissingName(t *testing.T) {
	r := newTestRouter(t, "")
	w := perform(t, r, http.MethodPost, "/api/v1/personas", map[string]any{
		"psychographic": map[string]any{"lifestyle": "urban"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePersonaReportsAllViolations(t *testing.T) {
	r := newTestRouter(t, "")
	w := perform(t, r, http.MethodPost, "/api/v1/personas", map[string]any{
		"name":          "Ada",
		"psychographic": map[string]any{"interests": "not-a-list"},
		"contextual":    map[string]any{"device_type": "phone"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "validation failed", body["error"])
	details, ok := body["details"].([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestGetPersonaEndpoint(t *testing.T) {
	r := newTestRouter(t, "")
	created := createPersona(t, r, map[string]any{"name": "Ada"})

	w := perform(t, r, http.MethodGet, "/api/v1/personas/"+idString(created), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decodeBody(t, w)["name"])

	w = perform(t, r, http.MethodGet, "/api/v1/personas/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, r, http.MethodGet, "/api/v1/personas/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPersonasEndpoint(t *testing.T) {
	r := newTestRouter(t, "")
	for _, name := range []string{"One", "Two", "Three"} {
		createPersona(t, r, map[string]any{"name": name})
	}

	w := perform(t, r, http.MethodGet, "/api/v1/personas?page=2&per_page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(2), body["pages"])
	personas, ok := body["personas"].([]any)
	require.True(t, ok)
	assert.Len(t, personas, 1)
}

func TestUpdatePersonaMergesCategories(t *testing.T) {
	r := newTestRouter(t, "")
	created := createPersona(t, r, map[string]any{
		"name":          "Ada",
		"psychographic": map[string]any{"interests": []string{"a"}, "lifestyle": "X"},
	})

	w := perform(t, r, http.MethodPatch, "/api/v1/personas/"+idString(created), map[string]any{
		"psychographic": map[string]any{"lifestyle": "Y"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	psy, ok := decodeBody(t, w)["psychographic"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Y", psy["lifestyle"])
	assert.Equal(t, []any{"a"}, psy["interests"])
}

func TestDeletePersonaEndpoint(t *testing.T) {
	r := newTestRouter(t, "")
	created := createPersona(t, r, map[string]any{"name": "Ada"})

	w := perform(t, r, http.MethodDelete, "/api/v1/personas/"+idString(created), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, r, http.MethodGet, "/api/v1/personas/"+idString(created), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, r, http.MethodDelete, "/api/v1/personas/"+idString(created), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttributeEndpoints(t *testing.T) {
	r := newTestRouter(t, "")
	created := createPersona(t, r, map[string]any{
		"name":       "Ada",
		"contextual": map[string]any{"season": "winter"},
	})
	base := "/api/v1/personas/" + idString(created) + "/attributes/"

	t.Run("get returns stored payload", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, base+"contextual", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "winter", decodeBody(t, w)["season"])
	})

	t.Run("unwritten category is an empty object", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, base+"behavioral", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeBody(t, w))
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, base+"astrological", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update merges into stored payload", func(t *testing.T) {
		w := perform(t, r, http.MethodPut, base+"contextual", map[string]any{
			"device_type": "mobile",
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "mobile", body["device_type"])
		assert.Equal(t, "winter", body["season"])
	})

	t.Run("invalid payload leaves stored data untouched", func(t *testing.T) {
		w := perform(t, r, http.MethodPut, base+"contextual", map[string]any{
			"device_type": "phone",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = perform(t, r, http.MethodGet, base+"contextual", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "mobile", decodeBody(t, w)["device_type"])
	})

	t.Run("null body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, base+"contextual", bytes.NewReader([]byte("null")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown persona is not found", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, "/api/v1/personas/999/attributes/contextual", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFieldConfigEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	w := perform(t, r, http.MethodGet, "/api/v1/field-config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decodeBody(t, w)
	assert.Len(t, full, 3)

	w = perform(t, r, http.MethodGet, "/api/v1/field-config?category=contextual&field=device_type", nil)
	require.Equal(t, http.StatusOK, w.Code)
	field := decodeBody(t, w)
	assert.Equal(t, "device_type", field["name"])

	w = perform(t, r, http.MethodGet, "/api/v1/field-config?category=astrological", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w))
}

func TestValidateEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	w := perform(t, r, http.MethodPost, "/api/v1/validate", map[string]any{
		"category": "contextual",
		"data":     map[string]any{"time_of_day": 123, "device_type": "phone"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["valid"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, errs, 2)

	w = perform(t, r, http.MethodPost, "/api/v1/validate", map[string]any{
		"category": "contextual",
		"data":     map[string]any{"device_type": "mobile"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["valid"])
}

func TestAvatarEndpointsWithoutStorage(t *testing.T) {
	r := newTestRouter(t, "")
	created := createPersona(t, r, map[string]any{"name": "Ada"})

	w := perform(t, r, http.MethodGet, "/api/v1/personas/"+idString(created)+"/avatar", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	r := newTestRouter(t, "secret")

	w := perform(t, r, http.MethodGet, "/api/v1/personas", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/personas", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/personas", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// system endpoints stay open
	w = perform(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t, "")
	w := perform(t, r, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func idString(persona map[string]any) string {
	id, _ := persona["id"].(float64)
	raw, _ := json.Marshal(int64(id))
	return string(raw)
}
