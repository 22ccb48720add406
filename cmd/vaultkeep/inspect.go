package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot-id>",
	Short: "Show a snapshot's file entries without restoring them",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	snapshotID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
	}

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

	detail, err := eng.Inspect(snapshotID)
	if err != nil {
		return err
	}

	fmt.Printf("snapshot %d  created %s  source %s\n",
		detail.Snapshot.ID,
		detail.Snapshot.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		detail.Snapshot.SourceRoot,
	)
	fmt.Printf("%-40s %-66s %s\n", "PATH", "DIGEST", "SIZE")
	for _, entry := range detail.Entries {
		blob := detail.Blobs[entry.Digest]
		fmt.Printf("%-40s %-66s %d\n", entry.RelativePath, entry.Digest, blob.Size)
	}
	return nil
}
