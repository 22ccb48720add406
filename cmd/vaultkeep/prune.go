package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete a snapshot and reclaim its orphaned content",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().Uint64("snapshot", 0, "Snapshot id to prune (required)")
	_ = pruneCmd.MarkFlagRequired("snapshot")
}

func runPrune(cmd *cobra.Command, args []string) error {
	snapshotID, _ := cmd.Flags().GetUint64("snapshot")

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

	existed, err := eng.Prune(snapshotID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("snapshot %d does not exist", snapshotID)
	}
	return nil
}
