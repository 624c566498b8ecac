// Package http exposes the catalog orchestrators over a JSON HTTP API.
// Every endpoint answers with the response envelope, using the envelope's
// own status as the HTTP status code.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/app/catalog/service"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/envelope"
)

// Dispatcher is the orchestrator surface a route binds to. Both the plain
// entity orchestrator and the blob-decorated file orchestrator satisfy it.
type Dispatcher interface {
	Handle(ctx context.Context, req service.Request) *envelope.Bitacora
	Entity() models.Entity
}

// Handler is the HTTP front of the service.
type Handler struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// Routes maps URL path segments to their orchestrators.
type Routes struct {
	Products      Dispatcher
	Presentations Dispatcher
	PriceLists    Dispatcher
	PriceItems    Dispatcher
	Categories    Dispatcher
	Promotions    Dispatcher
	Files         Dispatcher
	Composite     *service.Composite
}

// NewHandler builds the route table. Each entity gets one endpoint that
// multiplexes on the ProcessType query parameter, mirroring the
// orchestrator dispatch, plus a dedicated composite-creation endpoint
// under products.
func NewHandler(routes Routes, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{mux: http.NewServeMux(), logger: logger}

	entityPaths := []struct {
		path string
		d    Dispatcher
	}{
		{"/api/v1/catalog/products", routes.Products},
		{"/api/v1/catalog/presentations", routes.Presentations},
		{"/api/v1/catalog/price-lists", routes.PriceLists},
		{"/api/v1/catalog/price-items", routes.PriceItems},
		{"/api/v1/catalog/categories", routes.Categories},
		{"/api/v1/catalog/promotions", routes.Promotions},
		{"/api/v1/catalog/files", routes.Files},
	}
	for _, ep := range entityPaths {
		if ep.d == nil {
			continue
		}
		h.mux.HandleFunc(ep.path, h.entityEndpoint(ep.d))
	}
	if routes.Composite != nil {
		h.mux.HandleFunc("POST /api/v1/catalog/products/composite", h.compositeEndpoint(routes.Composite))
	}
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) entityEndpoint(d Dispatcher) http.HandlerFunc {
	entity := d.Entity()
	keyParam := entity.KeyParam()

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := service.Request{
			ProcessType: q.Get("ProcessType"),
			LoggedUser:  q.Get("LoggedUser"),
			DBServer:    q.Get("DBServer"),
			Key:         q.Get(keyParam),
			Keys:        splitList(q.Get(keyParam + "List")),
		}

		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			payload, ok := h.decodeBody(w, r)
			if !ok {
				return
			}
			req.Payload = payload
		}

		h.writeEnvelope(w, d.Handle(r.Context(), req))
	}
}

// compositeBody is the request document of the composite endpoint.
type compositeBody struct {
	Product       domain.Record   `json:"product"`
	Presentations []domain.Record `json:"presentations"`
	Files         []domain.Record `json:"files"`
}

func (h *Handler) compositeEndpoint(composite *service.Composite) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body compositeBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeEnvelope(w, envelope.New().Fail("request parsing", http.StatusBadRequest,
				"the request body is not valid JSON", err.Error()))
			return
		}

		q := r.URL.Query()
		h.writeEnvelope(w, composite.AddProductWithPresentations(r.Context(), service.CompositeRequest{
			LoggedUser:    q.Get("LoggedUser"),
			DBServer:      q.Get("DBServer"),
			Product:       body.Product,
			Presentations: body.Presentations,
			Files:         body.Files,
		}))
	}
}

// decodeBody reads a JSON object body. An empty body is allowed and
// yields a nil payload so the orchestrator produces its own message.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (domain.Record, bool) {
	var payload domain.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		h.writeEnvelope(w, envelope.New().Fail("request parsing", http.StatusBadRequest,
			"the request body is not valid JSON", err.Error()))
		return nil, false
	}
	return payload, true
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, b *envelope.Bitacora) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.Status)
	if err := json.NewEncoder(w).Encode(b); err != nil {
		h.logger.Error("writing response failed", slog.String("error", err.Error()))
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
