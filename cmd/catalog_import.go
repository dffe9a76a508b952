package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pos.GO/config"
	catalogService "pos.GO/service/catalog"
)

var (
	importFile  string
	importBatch int
)

var importCmd = &cobra.Command{
	Use:   "catalog:import",
	Short: "Import products from CSV into the local catalog",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(importFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			return
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		if err := config.MigrateDB(db); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			return
		}

		res, err := catalogService.ImportProducts(db, f, catalogService.ImportOptions{
			BatchSize: importBatch,
		})
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}

		fmt.Printf(`
=== Import Report ===
CSV rows:  %d
Created:   %d
Updated:   %d
Skipped:   %d
Total:     %v
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.TotalTime)
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "products.csv", "CSV file to import")
	importCmd.Flags().IntVarP(&importBatch, "batch", "b", 500, "Batch size")
	rootCmd.AddCommand(importCmd)
}
