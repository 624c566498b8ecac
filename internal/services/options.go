// Package services wires the application dependency graph.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/light-bringer/catalog-service/internal/app/catalog/audit"
	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/app/catalog/repo"
	"github.com/light-bringer/catalog-service/internal/app/catalog/service"
	"github.com/light-bringer/catalog-service/internal/config"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/blob"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	httphandler "github.com/light-bringer/catalog-service/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	MongoClient *mongo.Client
	Registry    *service.Registry
	Handler     *httphandler.Handler

	services map[string]*service.Service
	files    *service.Files
}

// NewServiceOptions creates and wires up all application dependencies.
// The document backend is mandatory; the partitioned backend and blob
// storage are attached only when configured.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ServiceOptions, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Connect the document backend.
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	mongoDB := mongoClient.Database(cfg.Mongo.Database)

	// 2. Optionally connect the partitioned backend.
	var cosmosDB *azcosmos.DatabaseClient
	if cfg.CosmosEnabled() {
		credential, err := azcosmos.NewKeyCredential(cfg.Cosmos.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to build Cosmos credential: %w", err)
		}
		cosmosClient, err := azcosmos.NewClientWithKey(cfg.Cosmos.Endpoint, credential, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cosmos client: %w", err)
		}
		if _, err := cosmosClient.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: cfg.Cosmos.Database}, nil); err != nil {
			// Already-exists is fine; EnsureContainer below surfaces real
			// connectivity problems per entity.
			logger.Debug("cosmos database creation skipped", slog.String("error", err.Error()))
		}
		cosmosDB, err = cosmosClient.NewDatabase(cfg.Cosmos.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open Cosmos database: %w", err)
		}
	}

	// 3. Register both backends' stores per entity.
	registry := service.NewRegistry()
	for _, entity := range models.All() {
		mongoStore := repo.NewMongoStore(mongoDB, entity)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure indexes for %s: %w", entity.Name, err)
		}
		registry.Register(entity, domain.BackendMongo, mongoStore)

		if cosmosDB != nil {
			if err := repo.EnsureContainer(ctx, cosmosDB, entity); err != nil {
				return nil, err
			}
			cosmosStore, err := repo.NewCosmosStore(cosmosDB, entity)
			if err != nil {
				return nil, err
			}
			registry.Register(entity, domain.BackendCosmos, cosmosStore)
		}
	}

	// 4. Infrastructure components shared by every orchestrator.
	clk := clock.NewRealClock()
	writer := audit.NewWriter(clk)

	// 5. One orchestrator per entity.
	svcs := make(map[string]*service.Service, len(models.All()))
	for _, entity := range models.All() {
		svcs[entity.Name] = service.NewService(entity, registry, writer, clk, logger)
	}

	// 6. Blob storage and the file decorator.
	var blobs contracts.BlobStore
	if cfg.BlobEnabled() {
		azureStore, err := blob.NewAzureStore(cfg.Blob.AccountName, cfg.Blob.AccountKey, cfg.Blob.Container)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
		blobs = azureStore
	}
	files := service.NewFiles(svcs[models.FilesCollection], blobs, logger)

	// 7. Composite creation flow.
	composite := service.NewComposite(
		svcs[models.ProductsCollection],
		svcs[models.PresentationsCollection],
		files,
		logger,
	)

	// 8. HTTP handler.
	handler := httphandler.NewHandler(httphandler.Routes{
		Products:      svcs[models.ProductsCollection],
		Presentations: svcs[models.PresentationsCollection],
		PriceLists:    svcs[models.PriceListsCollection],
		PriceItems:    svcs[models.PriceItemsCollection],
		Categories:    svcs[models.CategoriesCollection],
		Promotions:    svcs[models.PromotionsCollection],
		Files:         files,
		Composite:     composite,
	}, logger)

	return &ServiceOptions{
		MongoClient: mongoClient,
		Registry:    registry,
		Handler:     handler,
		services:    svcs,
		files:       files,
	}, nil
}

// Service returns the orchestrator for one entity, nil when unknown.
func (s *ServiceOptions) Service(entityName string) *service.Service {
	return s.services[entityName]
}

// Files returns the blob-decorated file orchestrator.
func (s *ServiceOptions) Files() *service.Files {
	return s.files
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.MongoClient != nil {
		_ = s.MongoClient.Disconnect(context.Background())
	}
}
