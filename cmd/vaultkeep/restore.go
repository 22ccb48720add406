package main

import (
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a snapshot's files to a target directory",
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().Uint64("snapshot-number", 0, "Snapshot id to restore (required)")
	restoreCmd.Flags().String("output-directory", "", "Directory to restore into (required)")
	restoreCmd.Flags().Bool("create-directory", false, "Create the output directory if it does not exist")
	_ = restoreCmd.MarkFlagRequired("snapshot-number")
	_ = restoreCmd.MarkFlagRequired("output-directory")
}

func runRestore(cmd *cobra.Command, args []string) error {
	snapshotID, _ := cmd.Flags().GetUint64("snapshot-number")
	outputDir, _ := cmd.Flags().GetString("output-directory")
	createDir, _ := cmd.Flags().GetBool("create-directory")

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

	return eng.Restore(snapshotID, outputDir, createDir)
}
