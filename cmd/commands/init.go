package commands

import (
	"fmt"

	"book_scraper/internal/db"

	"github.com/spf13/cobra"
)

func newInitCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init [--db books.db]",
		Short: "Creates the Books table if it does not exist yet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			store := db.NewStore(cfg.DB.Path)
			created, err := store.EnsureSchema(cmd.Context())
			if err != nil {
				return err
			}
			n, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}

			if !cfg.Verbose {
				return nil
			}
			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "Table %s created in %s.\n", db.TableName, store.Path())
			} else {
				fmt.Fprintf(out, "Table %s already exists in %s (%d rows).\n", db.TableName, store.Path(), n)
			}
			return nil
		},
	}
}
