package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pastelaria-api/database"
	"github.com/yeremiapane/pastelaria-api/models"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB(db)

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(models.All()))
			return nil
		},
	}
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog",
		Long: `Load sizes, flavors and products from the embedded sample data.

Tables that already have rows are skipped unless --reset is given, which
replaces the catalog. Orders are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB(db)

			res, err := database.Seed(db, reset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded tamanhos=%d sabores=%d produtos=%d\n", res.Tamanhos, res.Sabores, res.Produtos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "replace the existing catalog")
	return cmd
}
