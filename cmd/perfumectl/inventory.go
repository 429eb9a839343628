package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"perfumery/internal/accounts"
	"perfumery/internal/inventory"
)

func readStockSheet(path string) ([]inventory.StockRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return inventory.ParseStockPDF(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return inventory.ParseStockCSV(f)
}

func newInventoryCommand() *cobra.Command {
	inv := &cobra.Command{
		Use:   "inventory",
		Short: "Manage ingredient stock",
	}

	var actorEmail string
	importCmd := &cobra.Command{
		Use:   "import <file.csv|file.pdf>",
		Short: "Upsert ingredient stock from a CSV or PDF stock sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readStockSheet(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("%s contains no stock rows", args[0])
			}
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			var actorID uint
			if actorEmail != "" {
				actor, err := accounts.FindByEmail(cmd.Context(), db, actorEmail)
				if err != nil {
					return fmt.Errorf("find %s: %w", actorEmail, err)
				}
				actorID = actor.ID
			}

			summary, err := inventory.NewLedger().ImportStock(cmd.Context(), db, rows, actorID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows: %d created, %d updated, %d unchanged.\n",
				len(rows), summary.Created, summary.Updated, summary.Unchanged)
			return nil
		},
	}
	importCmd.Flags().StringVar(&actorEmail, "as", "", "email of the user the stock movements are recorded for")

	inv.AddCommand(importCmd)
	return inv
}
