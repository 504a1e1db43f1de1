package commands

import (
	"book_scraper/internal/db"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func newDumpCmd(root *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dump [--db books.db] [--limit n]",
		Short: "Prints stored rows as YAML, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			store := db.NewStore(cfg.DB.Path)
			if _, err := store.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			rows, err := store.Records(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[len(rows)-limit:]
			}

			out, err := yaml.Marshal(rows)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Only print the last n rows (0 prints all).")
	return cmd
}
