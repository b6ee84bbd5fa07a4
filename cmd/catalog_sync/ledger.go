package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/catalog_sync_app/internal/adapters/ledger/evm"
	"github.com/SscSPs/catalog_sync_app/internal/adapters/ledger/memory"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/SscSPs/catalog_sync_app/internal/core/services"
	"github.com/SscSPs/catalog_sync_app/internal/platform/config"
)

// openLedger binds the configured driver. The returned func releases it.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.LedgerBinding, func(), error) {
	switch cfg.LedgerDriver {
	case config.LedgerDriverMemory:
		ledger := memory.NewLedger()
		signer := memory.NewSigner(ledger, domain.Account(cfg.SignerAccount))
		logger.Warn("Using the in-process ledger; state is lost on exit",
			slog.String("account", signer.ActiveAccount().Checksum()))
		return services.LedgerBinding{Gateway: memory.NewGateway(ledger, signer), Signer: signer}, func() {}, nil

	case config.LedgerDriverEVM:
		profile, err := evm.ProfileByKind(cfg.CatalogKind)
		if err != nil {
			return services.LedgerBinding{}, nil, err
		}
		client, err := evm.Dial(ctx, cfg.LedgerRPCURL, cfg.LedgerContractAddress, profile)
		if err != nil {
			return services.LedgerBinding{}, nil, fmt.Errorf("connecting to ledger: %w", err)
		}
		signer, err := evm.NewKeyedSigner(client, cfg.SignerPrivateKey, cfg.LedgerChainID)
		if err != nil {
			client.Close()
			return services.LedgerBinding{}, nil, err
		}
		logger.Info("Bound catalog contract",
			slog.String("kind", profile.Kind),
			slog.String("contract", cfg.LedgerContractAddress),
			slog.String("chain_id", cfg.LedgerChainID.String()),
			slog.String("account", signer.ActiveAccount().Checksum()))
		return services.LedgerBinding{Gateway: evm.NewGateway(client, signer, logger), Signer: signer}, client.Close, nil

	default:
		return services.LedgerBinding{}, nil, fmt.Errorf("unknown ledger driver %q", cfg.LedgerDriver)
	}
}
