package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pastelaria-api/services"
)

func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Response cache maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB(db)

			store, closeStore, err := openStore(cmd.Context(), rootOpts.Config, db)
			if err != nil {
				return err
			}
			defer closeStore()

			n := services.NewCacheSweeper(store, rootOpts.Config.CacheSweepInterval).SweepOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [pattern]",
		Short: "Delete cached responses matching a LIKE pattern (default all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "%"
			if len(args) == 1 {
				pattern = args[0]
			}

			db, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB(db)

			store, closeStore, err := openStore(cmd.Context(), rootOpts.Config, db)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := store.DeletePattern(cmd.Context(), pattern)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
			return nil
		},
	})

	return cmd
}
