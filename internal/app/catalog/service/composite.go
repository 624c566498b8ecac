package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/committer"
	"github.com/light-bringer/catalog-service/internal/pkg/envelope"
)

// CompositeRequest carries one product with its dependent records, all to
// be created in a single call.
type CompositeRequest struct {
	LoggedUser    string
	DBServer      string
	Product       domain.Record
	Presentations []domain.Record
	Files         []domain.Record
}

// Composite creates a product together with its presentations and file
// attachments as one logical unit. Neither backend spans collections with
// a transaction, so failure at any step rolls back the records already
// written with compensating hard deletes.
type Composite struct {
	products      *Service
	presentations *Service
	files         *Files
	logger        *slog.Logger
}

// NewComposite wires the composite flow over the three orchestrators.
func NewComposite(products, presentations *Service, files *Files, logger *slog.Logger) *Composite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composite{
		products:      products,
		presentations: presentations,
		files:         files,
		logger:        logger.With(slog.String("flow", "composite")),
	}
}

// AddProductWithPresentations runs the composite creation. The response
// envelope carries the created product with its presentations and files
// nested under it.
func (c *Composite) AddProductWithPresentations(ctx context.Context, req CompositeRequest) *envelope.Bitacora {
	const process = "AddProductWithPresentations"

	b := envelope.New()
	b.ProcessType = process
	b.LoggedUser = req.LoggedUser

	if req.LoggedUser == "" {
		return b.Fail("parameter validation", http.StatusBadRequest,
			"missing required parameter: LoggedUser",
			"LoggedUser is required for audit traceability")
	}
	backend, err := domain.ParseBackend(req.DBServer)
	if err != nil {
		return b.FailErr("backend selection", err)
	}
	b.DBServer = string(backend)

	if len(req.Product) == 0 {
		return b.Fail(process, http.StatusBadRequest,
			"missing product payload",
			"a composite request must include a product record")
	}
	// The composite flow is stricter than plain product creation: the
	// nested records are presented under the product name, so it must be
	// set explicitly.
	if req.Product.String(models.ProductName) == "" {
		return b.Fail(process, http.StatusBadRequest,
			fmt.Sprintf("missing required field: %s", models.ProductName),
			fmt.Sprintf("composite creation requires %s on the product", models.ProductName))
	}

	plan := committer.NewPlan(c.logger)

	product, err := c.products.AddOne(ctx, backend, req.Product, req.LoggedUser)
	if err != nil {
		return b.FailErr(process, err)
	}
	sku := product.String(models.SKUID)
	plan.Add("product "+sku, func(ctx context.Context) error {
		_, err := c.products.DeleteHard(ctx, backend, sku)
		return err
	})
	b.AddMessage(process, envelope.TypeOK, http.StatusOK,
		"product created", fmt.Sprintf("created %s %s", models.ProductsCollection, sku))

	createdPresentations := make([]domain.Record, 0, len(req.Presentations))
	for i, payload := range req.Presentations {
		payload = payload.Clone()
		payload[models.SKUID] = sku
		pres, err := c.presentations.AddOne(ctx, backend, payload, req.LoggedUser)
		if err != nil {
			c.logger.Warn("composite step failed, rolling back",
				slog.String("step", fmt.Sprintf("presentation %d", i)),
				slog.String("error", err.Error()))
			plan.Rollback(ctx)
			return b.FailErr(process, fmt.Errorf("presentation %d: %w", i, err))
		}
		key := pres.String(models.IdPresentaOK)
		plan.Add("presentation "+key, func(ctx context.Context) error {
			_, err := c.presentations.DeleteHard(ctx, backend, key)
			return err
		})
		createdPresentations = append(createdPresentations, pres)
	}
	if len(createdPresentations) > 0 {
		b.AddMessage(process, envelope.TypeOK, http.StatusOK,
			fmt.Sprintf("%d presentations created", len(createdPresentations)),
			fmt.Sprintf("created %d %s records", len(createdPresentations), models.PresentationsCollection))
	}

	createdFiles := make([]domain.Record, 0, len(req.Files))
	for i, payload := range req.Files {
		payload = payload.Clone()
		payload[models.SKUID] = sku
		result := c.files.Handle(ctx, Request{
			ProcessType: OpAddOne,
			LoggedUser:  req.LoggedUser,
			DBServer:    req.DBServer,
			Payload:     payload,
		})
		if !result.Success {
			c.logger.Warn("composite step failed, rolling back",
				slog.String("step", fmt.Sprintf("file %d", i)),
				slog.String("error", result.MessageDEV))
			plan.Rollback(ctx)
			return b.Fail(process, result.Status,
				result.MessageUSR,
				fmt.Sprintf("file %d: %s", i, result.MessageDEV))
		}
		file, _ := result.DataRes.(domain.Record)
		if key := file.String(models.FileID); key != "" {
			plan.Add("file "+key, func(ctx context.Context) error {
				res := c.files.Handle(ctx, Request{
					ProcessType: OpDeleteHard,
					LoggedUser:  req.LoggedUser,
					DBServer:    req.DBServer,
					Key:         key,
				})
				if !res.Success {
					return fmt.Errorf("deleting file %s: %s", key, res.MessageDEV)
				}
				return nil
			})
		}
		createdFiles = append(createdFiles, file)
	}
	if len(createdFiles) > 0 {
		b.AddMessage(process, envelope.TypeOK, http.StatusOK,
			fmt.Sprintf("%d files attached", len(createdFiles)),
			fmt.Sprintf("created %d %s records", len(createdFiles), models.FilesCollection))
	}

	plan.Discard()
	c.logger.Info("composite creation completed",
		slog.String("sku", sku),
		slog.Int("presentations", len(createdPresentations)),
		slog.Int("files", len(createdFiles)))

	nested := product.Clone()
	nested["presentations"] = createdPresentations
	nested["files"] = createdFiles
	return b.OK(process, "product and dependent records created successfully", nested)
}
