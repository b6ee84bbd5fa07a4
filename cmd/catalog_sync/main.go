package main

import (
	"os"
)

// @title Catalog Sync API
// @version 1.0
// @description Local mirror of an on-ledger catalog with guarded create and purchase transactions.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
