package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
	"github.com/SscSPs/catalog_sync_app/internal/core/services"
	"github.com/SscSPs/catalog_sync_app/internal/dto"
	"github.com/SscSPs/catalog_sync_app/internal/metrics"
	"github.com/SscSPs/catalog_sync_app/internal/platform/config"
)

var (
	createTitle       string
	createDescription string
	createImageURL    string
	createPrice       string
	purchasePrice     string
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Refresh from the ledger and print the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(func(ctx context.Context, catalog portssvc.CatalogSvcFacade) error {
			return printJSON(dto.ToCatalogResponse(catalog.Snapshot()))
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "List a new item and wait for confirmation",
	Long: `List a new item as the configured signer and wait for confirmation.

Example:
  catalog_sync create --title "Go basics" --description "Intro course" --price 0.1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dto.CreateItemRequest{
			Title:       createTitle,
			Description: createDescription,
			ImageURL:    createImageURL,
			Price:       createPrice,
		}
		return withCatalog(func(ctx context.Context, catalog portssvc.CatalogSvcFacade) error {
			out, err := catalog.Create(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(dto.ToTxOutcomeResponse(out))
		})
	},
}

var purchaseCmd = &cobra.Command{
	Use:   "purchase ITEM_ID",
	Short: "Purchase or join an item and wait for confirmation",
	Long: `Purchase or join an item as the configured signer and wait for confirmation.
Without --price the listed price is paid.

Example:
  catalog_sync purchase 0 --price 0.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q: %w", args[0], err)
		}
		return withCatalog(func(ctx context.Context, catalog portssvc.CatalogSvcFacade) error {
			out, err := catalog.Purchase(ctx, itemID, purchasePrice)
			if err != nil {
				return err
			}
			return printJSON(dto.ToTxOutcomeResponse(out))
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "item title")
	createCmd.Flags().StringVar(&createDescription, "description", "", "item description")
	createCmd.Flags().StringVar(&createImageURL, "image-url", "", "image URL (product and tournament catalogs)")
	createCmd.Flags().StringVar(&createPrice, "price", "", "price as a decimal, e.g. 0.1")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("price")

	purchaseCmd.Flags().StringVar(&purchasePrice, "price", "", "offered price as a decimal; defaults to the listed price")
}

// withCatalog starts a catalog session without persistence or HTTP and runs fn.
func withCatalog(fn func(ctx context.Context, catalog portssvc.CatalogSvcFacade) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := stderrLogger(cfg.IsProduction)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	binding, closeLedger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	container := services.NewServiceContainer(cfg, binding, portsrepo.RepositoryProvider{}, logger, metrics.NewNopMetrics())
	if err := container.Catalog.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, container.Catalog)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
