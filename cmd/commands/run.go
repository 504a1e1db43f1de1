package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"book_scraper/internal/app"
	"book_scraper/internal/logger"

	"github.com/spf13/cobra"
)

func newRunCmd(root *rootFlags) *cobra.Command {
	var (
		delay  float64
		start  int
		end    int
		engine string
	)

	cmd := &cobra.Command{
		Use:   "run [--db books.db] [--delay 5] [--start 1] [--end 50]",
		Short: "Scrapes catalog pages [start, end) and appends every book to the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				cfg.Logic.DelayMS = int(delay * float64(time.Second/time.Millisecond))
			}
			if cmd.Flags().Changed("start") {
				cfg.Logic.PageStart = start
			}
			if cmd.Flags().Changed("end") {
				cfg.Logic.PageEnd = end
			}
			if cmd.Flags().Changed("engine") {
				cfg.Logic.Engine = engine
			}

			logger.InitLogger(cfg.Verbose)

			spider, err := app.NewBookSpider(cfg, slog.Default())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			t1 := time.Now()
			stats, err := spider.Run(ctx)
			if err != nil {
				slog.Error("scrape aborted", "pages", stats.Pages, "records", stats.Records, "err", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Done scraping: %d pages, %d records in %s\n",
				stats.Pages, stats.Records, time.Since(t1).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().Float64Var(&delay, "delay", 5, "Minimum seconds between two requests.")
	cmd.Flags().IntVar(&start, "start", 1, "First catalog page.")
	cmd.Flags().IntVar(&end, "end", 50, "Catalog page to stop before.")
	cmd.Flags().StringVar(&engine, "engine", "resty", "Fetch engine: resty or colly.")
	return cmd
}
