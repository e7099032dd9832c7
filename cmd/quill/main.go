package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quillstore/quill/internal/interfaces/cli/migrate"
	"github.com/quillstore/quill/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Quill - digital goods storefront",
		Long:  `Quill is a storefront for digital goods with webhook-driven purchase fulfillment, a buyer library, and realtime entitlement delivery.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
