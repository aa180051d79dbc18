package cli

import (
	"fmt"

	"storefront/internal/domain/catalog"
	"storefront/internal/infra/fixture"
	"storefront/internal/usecase"

	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	var (
		f      filterFlags
		sort   string
		order  string
		offset int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a catalog query over a fixture file",
		Long: `Filters, sorts and paginates the products in a JSON fixture and prints
the matching page together with facet counts, in the same shape as GET /products.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := fixtureUsecase(f.file)
			if err != nil {
				return err
			}

			in := usecase.ListProductsInput{
				Filters: f.criteria(cmd),
				Sort:    catalog.ParseSort(sort, order),
			}
			if cmd.Flags().Changed("offset") || cmd.Flags().Changed("limit") {
				in.Page = &catalog.PageSpec{Offset: offset, Limit: limit}
			}

			res, err := f.list(uc, cmd, in)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			return writeJSON(cmd, res)
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVar(&sort, "sort", "name", "sort key (name, price, rating, createdAt, featured, stock, sales)")
	cmd.Flags().StringVar(&order, "order", "asc", "sort direction (asc, desc)")
	cmd.Flags().IntVar(&offset, "offset", 0, "items to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 = all)")
	return cmd
}

func newFacetsCommand() *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Print facet counts for a filter over a fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := fixtureUsecase(f.file)
			if err != nil {
				return err
			}

			counts, err := uc.CountFacets(cmd.Context(), f.criteria(cmd), f.public)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			return writeJSON(cmd, counts)
		},
	}

	f.bind(cmd)
	return cmd
}

func fixtureUsecase(path string) (*usecase.ProductUsecase, error) {
	repo, err := fixture.NewProductMemoryRepositoryFromFile(path)
	if err != nil {
		return nil, err
	}
	return usecase.NewProductUsecase(repo, nil, nil), nil
}
