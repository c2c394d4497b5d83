package cmd

import (
	"github.com/nguyentranbao-ct/storefront/internal/app"
	"github.com/nguyentranbao-ct/storefront/internal/server"
	"github.com/nguyentranbao-ct/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront web service",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront over HTTP",
	Run:   serve,
}

func serve(cmd *cobra.Command, args []string) {
	app.Invoke(
		server.StartServer,
	).Run()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newCatalogCmd())
}

func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		logger.S().Fatal(err)
	}
}
