package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pos.GO/config"
	outboxRepo "pos.GO/model/repository/outbox"
)

var (
	queueRetryID   uint
	queuePruneDays int
)

var queueListCmd = &cobra.Command{
	Use:   "queue:list",
	Short: "List the outbox queue, oldest first",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		items, err := outboxRepo.NewOutboxRepository(db).PeekAll()
		if err != nil {
			fmt.Printf("Read queue failed: %v\n", err)
			os.Exit(1)
		}
		if len(items) == 0 {
			fmt.Println("Queue is empty.")
			return
		}
		fmt.Printf("%-6s %-16s %-38s %-8s %-7s %s\n", "ID", "TYPE", "UUID", "STATUS", "RETRIES", "QUEUED")
		for _, it := range items {
			fmt.Printf("%-6d %-16s %-38s %-8s %-7d %s\n",
				it.ID, it.EntityType, it.EntityUUID, it.Status, it.RetryCount,
				it.QueuedAt.Format(time.RFC3339))
		}
	},
}

var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List items past the retry ceiling",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		items, err := outboxRepo.NewOutboxRepository(db).Failed()
		if err != nil {
			fmt.Printf("Read queue failed: %v\n", err)
			os.Exit(1)
		}
		if len(items) == 0 {
			fmt.Println("No failed items.")
			return
		}
		for _, it := range items {
			fmt.Printf("#%d %s %s retries=%d last_error=%s\n",
				it.ID, it.EntityType, it.EntityUUID, it.RetryCount, it.LastError)
		}
	},
}

var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry",
	Short: "Put a failed item back in play",
	Run: func(cmd *cobra.Command, args []string) {
		if queueRetryID == 0 {
			fmt.Println("--id is required")
			os.Exit(1)
		}
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		if err := outboxRepo.NewOutboxRepository(db).Retry(queueRetryID); err != nil {
			fmt.Printf("Retry failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Item %d is pending again.\n", queueRetryID)
	},
}

var queuePruneCmd = &cobra.Command{
	Use:   "queue:prune",
	Short: "Delete synced queue rows older than N days",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		cutoff := time.Now().AddDate(0, 0, -queuePruneDays)
		n, err := outboxRepo.NewOutboxRepository(db).PruneSynced(cutoff)
		if err != nil {
			fmt.Printf("Prune failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pruned %d synced rows older than %s.\n", n, cutoff.Format("2006-01-02"))
	},
}

func init() {
	queueRetryCmd.Flags().UintVar(&queueRetryID, "id", 0, "Queue item id")
	queuePruneCmd.Flags().IntVar(&queuePruneDays, "days", 30, "Age in days")
	rootCmd.AddCommand(queueListCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(queueRetryCmd)
	rootCmd.AddCommand(queuePruneCmd)
}
