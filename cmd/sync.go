package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"pos.GO/config"
	syncService "pos.GO/service/sync"
)

func bootstrapWorker() (*gorm.DB, *syncService.Worker, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, nil, err
	}
	if err := config.MigrateDB(db); err != nil {
		return nil, nil, err
	}
	cfg := syncService.ConfigFromEnv()
	w := syncService.NewWorker(db, cfg)
	if token := os.Getenv("SYNC_TOKEN"); token != "" {
		w.SetToken(token)
	}
	syncService.SetDefault(w)
	return db, w, nil
}

var syncRunCmd = &cobra.Command{
	Use:   "sync:run",
	Short: "Run one push-then-pull sync cycle and exit",
	Run: func(cmd *cobra.Command, args []string) {
		_, w, err := bootstrapWorker()
		if err != nil {
			fmt.Printf("Bootstrap failed: %v\n", err)
			os.Exit(1)
		}
		res := w.RunOnce(context.Background())
		st := w.Status()
		fmt.Printf("Pushed:   %d\nPulled:   %d\nCursor:   %d\n", res.Pushed, res.Pulled, st.Cursor)
		if st.LastError != "" {
			fmt.Printf("Error:    %s\n", st.LastError)
			os.Exit(1)
		}
	},
}

var syncStartCmd = &cobra.Command{
	Use:   "sync:start",
	Short: "Run the sync worker on its timer until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		_, w, err := bootstrapWorker()
		if err != nil {
			fmt.Printf("Bootstrap failed: %v\n", err)
			os.Exit(1)
		}
		cfg := syncService.ConfigFromEnv()
		fmt.Printf("Sync worker started, interval %v. Press Ctrl+C to exit.\n", cfg.Interval)

		if cfg.OnStart {
			w.RunOnce(context.Background())
		}

		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		for {
			select {
			case <-ticker.C:
				w.RunOnce(context.Background())
			case <-stop:
				fmt.Println("Sync worker stopped.")
				return
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(syncRunCmd)
	rootCmd.AddCommand(syncStartCmd)
}
