package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots with storage accounting",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, st, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	maybeServeMetrics(cmd, st)

	accounts, err := eng.List()
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %-20s %-12s %-14s %s\n", "SNAPSHOT", "TIMESTAMP", "SIZE", "DISTINCT_SIZE", "SOURCE")

	var total int64
	for _, acc := range accounts {
		fmt.Printf("%-10d %-20s %-12d %-14d %s\n",
			acc.Snapshot.ID,
			acc.Snapshot.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			acc.TotalSize,
			acc.DistinctSize,
			acc.Snapshot.SourceRoot,
		)
		total += acc.TotalSize
	}

	fmt.Printf("total: %d\n", total)
	return nil
}
