package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"book_scraper/internal/config"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	envPath    string
	dbPath     string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "bookscraper",
		Short:         "bookscraper appends book prices from a catalog site to a SQLite file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "YAML config file.")
	root.PersistentFlags().StringVar(&flags.envPath, "env", config.DefaultEnvFilePath, "Optional .env file.")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite file to write to (overrides db.path).")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", true, "Print progress.")

	root.AddCommand(newRunCmd(flags), newInitCmd(flags), newDumpCmd(flags))
	return root
}

func ExecuteContext(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the YAML file, the .env file, the environment
// and finally any flags given on the command line.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.ScraperConfig, error) {
	if err := config.ApplyEnvFile(flags.envPath); err != nil {
		slog.Debug("no .env loaded", "err", err)
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("db") {
		cfg.DB.Path = flags.dbPath
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	return cfg, nil
}
