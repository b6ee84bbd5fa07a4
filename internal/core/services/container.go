package services

import (
	"log/slog"

	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
	"github.com/SscSPs/catalog_sync_app/internal/metrics"
	"github.com/SscSPs/catalog_sync_app/internal/platform/config"
)

// LedgerBinding is the gateway and signer pair of the configured deployment.
type LedgerBinding struct {
	Gateway portsledger.CatalogGateway
	Signer  portsledger.Signer
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Persistence is skipped when repos carries no catalog repository.
func NewServiceContainer(cfg *config.Config, binding LedgerBinding, repos portsrepo.RepositoryProvider, logger *slog.Logger, m metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	lifecycleOpts := []LifecycleOption{
		WithConfirmationTimeout(cfg.ConfirmationTimeout),
		WithLifecycleObservability(logger, m),
	}
	catalogOpts := []CatalogServiceOption{
		WithRefreshTimeout(cfg.RefreshTimeout),
		WithObservability(logger, m),
	}
	if repos.CatalogRepo != nil {
		lifecycleOpts = append(lifecycleOpts, WithPendingRepository(repos.CatalogRepo, cfg.Deployment()))
		catalogOpts = append(catalogOpts, WithCatalogRepository(repos.CatalogRepo, cfg.Deployment()))
	}
	catalogOpts = append(catalogOpts, WithTransactionLifecycle(NewTransactionLifecycle(binding.Gateway, lifecycleOpts...)))

	container.Catalog = NewCatalogService(binding.Gateway, binding.Signer, catalogOpts...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CatalogSvcFacade = (*catalogService)(nil)
)
