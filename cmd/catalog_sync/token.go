package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/catalog_sync_app/internal/platform/config"
	"github.com/SscSPs/catalog_sync_app/internal/utils"
)

var tokenExpiry time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token CLIENT_ID",
	Short: "Issue an API token for a client",
	Long: `Issue an HS256 bearer token signed with JWT_SECRET.

Example:
  catalog_sync token storefront --expiry 720h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		token, err := utils.GenerateClientToken(args[0], cfg.JWTSecret, tokenExpiry)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 24*time.Hour, "token lifetime")
}
