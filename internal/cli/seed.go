package cli

import (
	"fmt"

	"storefront/internal/config"
	"storefront/internal/infra/fixture"

	"github.com/spf13/cobra"
)

func newSeedCommand(deps Deps) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a fixture file into the product database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := fixture.LoadFile(file)
			if err != nil {
				return err
			}

			cfg, err := deps.LoadConfig(config.WithoutAuth())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			w, closeFn, err := deps.OpenWriter(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeFn()

			if err := w.Upsert(cmd.Context(), products); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products from %s\n", len(products), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "product fixture (JSON array)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
