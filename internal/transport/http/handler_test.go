package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/catalog/audit"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/app/catalog/repo"
	"github.com/light-bringer/catalog-service/internal/app/catalog/service"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/envelope"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	registry := service.NewRegistry()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	writer := audit.NewWriter(clk)
	logger := slog.New(slog.DiscardHandler)

	svcs := map[string]*service.Service{}
	for _, entity := range models.All() {
		registry.Register(entity, domain.BackendMongo, repo.NewMemoryStore(entity))
		svcs[entity.Name] = service.NewService(entity, registry, writer, clk, logger)
	}
	files := service.NewFiles(svcs[models.FilesCollection], nil, logger)
	composite := service.NewComposite(
		svcs[models.ProductsCollection], svcs[models.PresentationsCollection], files, logger)

	return NewHandler(Routes{
		Products:      svcs[models.ProductsCollection],
		Presentations: svcs[models.PresentationsCollection],
		PriceLists:    svcs[models.PriceListsCollection],
		PriceItems:    svcs[models.PriceItemsCollection],
		Categories:    svcs[models.CategoriesCollection],
		Promotions:    svcs[models.PromotionsCollection],
		Files:         files,
		Composite:     composite,
	}, logger)
}

func doRequest(t *testing.T, h *Handler, method, target, body string) (*httptest.ResponseRecorder, *envelope.Bitacora) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var b envelope.Bitacora
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return rec, &b
}

func TestHandler_ProductLifecycle(t *testing.T) {
	h := newTestHandler(t)

	t.Run("AddOne creates a product", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products?ProcessType=AddOne&LoggedUser=tester",
			`{"SKUID":"SKU-001","DESSKU":"Laptop","IDUNIDADMEDIDA":"PZ"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, b.Success, b.MessageDEV)
		data := b.DataRes.(map[string]any)
		assert.Equal(t, "SKU-001", data["SKUID"])
		assert.Equal(t, "tester", data["REGUSER"])
	})

	t.Run("GetOne reads it back by its key parameter", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodGet,
			"/api/v1/catalog/products?ProcessType=GetOne&LoggedUser=tester&skuid=SKU-001", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, b.Success, b.MessageDEV)
	})

	t.Run("UpdateOne applies a partial change", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPut,
			"/api/v1/catalog/products?ProcessType=UpdateOne&LoggedUser=editor&skuid=SKU-001",
			`{"MARCA":"Acme"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, b.Success, b.MessageDEV)
		data := b.DataRes.(map[string]any)
		assert.Equal(t, "Acme", data["MARCA"])
	})

	t.Run("missing record maps to HTTP 404", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodGet,
			"/api/v1/catalog/products?ProcessType=GetOne&LoggedUser=tester&skuid=SKU-404", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, b.Success)
	})

	t.Run("missing LoggedUser maps to HTTP 400", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodGet,
			"/api/v1/catalog/products?ProcessType=GetAll", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, b.Success)
		assert.Contains(t, b.MessageUSR, "LoggedUser")
	})

	t.Run("malformed JSON body maps to HTTP 400", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products?ProcessType=AddOne&LoggedUser=tester",
			`{"SKUID":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, b.Success)
	})

	t.Run("duplicate key maps to HTTP 400", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products?ProcessType=AddOne&LoggedUser=tester",
			`{"SKUID":"SKU-001","DESSKU":"Laptop","IDUNIDADMEDIDA":"PZ"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, b.Success)
	})
}

func TestHandler_BulkKeys(t *testing.T) {
	h := newTestHandler(t)

	for _, sku := range []string{"SKU-001", "SKU-002"} {
		_, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products?ProcessType=AddOne&LoggedUser=tester",
			`{"SKUID":"`+sku+`","DESSKU":"Item","IDUNIDADMEDIDA":"PZ"}`)
		require.True(t, b.Success, b.MessageDEV)
	}

	rec, b := doRequest(t, h, http.MethodPost,
		"/api/v1/catalog/products?ProcessType=DeactivateMany&LoggedUser=tester&skuidList=SKU-001,%20SKU-002,SKU-404", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, b.Success, b.MessageDEV)
	data := b.DataRes.(map[string]any)
	assert.Equal(t, float64(2), data["successCount"])
	assert.Equal(t, float64(1), data["failedCount"])
}

func TestHandler_Composite(t *testing.T) {
	h := newTestHandler(t)

	t.Run("creates the full aggregate", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products/composite?LoggedUser=tester",
			`{
				"product": {"SKUID":"SKU-100","PRODUCTNAME":"Grinder","DESSKU":"Coffee grinder","IDUNIDADMEDIDA":"PZ"},
				"presentations": [{"IdPresentaOK":"PRES-100","NOMBREPRESENTACION":"Unidad","Descripcion":"Single unit"}]
			}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, b.Success, b.MessageDEV)
		data := b.DataRes.(map[string]any)
		assert.Equal(t, "SKU-100", data["SKUID"])
		assert.Len(t, data["presentations"], 1)
	})

	t.Run("invalid body maps to HTTP 400", func(t *testing.T) {
		rec, b := doRequest(t, h, http.MethodPost,
			"/api/v1/catalog/products/composite?LoggedUser=tester", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, b.Success)
	})
}

func TestHandler_Health(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
