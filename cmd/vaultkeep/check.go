package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify stored content against recorded digests",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	corrupt, err := eng.Verify()
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-30s %s\n", "SnapshotId", "FileName", "RelativePath")
	for _, c := range corrupt {
		fmt.Printf("%-12d %-30s %s\n", c.SnapshotID, c.FileName, c.RelativePath)
	}
	return nil
}
