package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create a snapshot of a directory tree",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().String("target-directory", "", "Directory to capture (required)")
	_ = snapshotCmd.MarkFlagRequired("target-directory")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target-directory")

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

	id, err := eng.Snapshot(target)
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}
