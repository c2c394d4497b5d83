package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/config"
	"github.com/nguyentranbao-ct/storefront/internal/repo/catalog"
	"github.com/nguyentranbao-ct/storefront/internal/store"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and prepare product catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd(), newCatalogConvertCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Fetch and validate the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if source == "" {
				source = conf.Catalog.Source
			}

			src := catalog.NewSource(source, conf.Catalog.Timeout, conf.Catalog.Retries)
			catalogStore, err := store.NewCatalogStore(src, validator.New())
			if err != nil {
				return err
			}
			loaded, err := catalogStore.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d products OK\n", src.Name(), loaded.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "catalog URL or file path (defaults to CATALOG_SOURCE)")
	return cmd
}

func newCatalogConvertCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an Excel product sheet to a products.json catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := convertCatalog(cmd.Context(), in, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d products to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input .xlsx file")
	cmd.Flags().StringVar(&out, "out", "products.json", "output JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// convertCatalog writes the workbook as catalog JSON after validating it the
// same way the server does when loading.
func convertCatalog(ctx context.Context, in, out string) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	products, err := catalog.ParseExcel(f)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal catalog: %w", err)
	}
	if _, err := store.ParseCatalog(data, validator.New()); err != nil {
		return 0, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	return len(products), nil
}
