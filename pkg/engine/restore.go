package engine

import (
	"fmt"
	"path/filepath"

	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/events"
	"github.com/cuemby/vaultkeep/pkg/log"
	"github.com/cuemby/vaultkeep/pkg/metrics"
	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

// Restore materializes snapshotID's files under outputRoot. If
// createOutputRoot is false and outputRoot does not already exist, it
// fails with InvalidInput rather than silently creating it. Per-file
// failures are logged and do not abort the restore; the operation is not
// transactional on the filesystem side.
func (e *BackupEngine) Restore(snapshotID uint64, outputRoot string, createOutputRoot bool) error {
	log.WithComponent("engine").Debug().Uint64("snapshot_id", snapshotID).Str("output_root", outputRoot).Msg("restore requested")
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RestoreDuration)

	if createOutputRoot {
		if err := e.fs.CreateDirectory(outputRoot); err != nil {
			return err
		}
	} else if !e.fs.DirectoryExists(outputRoot) {
		return vkerrors.New(vkerrors.KindInvalidInput, "output directory does not exist: "+outputRoot)
	}

	e.publish(events.EventRestoreStarted, "restore started", map[string]string{
		"snapshot_id": fmt.Sprint(snapshotID),
		"output_root": outputRoot,
	})

	var entriesEmpty bool
	var snapEntries = 0
	var restored int

	err := e.store.View(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)

		if !si.Exists(snapshotID) {
			entriesEmpty = true
			return nil
		}

		sd, err := si.Get(snapshotID)
		if err != nil {
			return err
		}
		if len(sd.Entries) == 0 {
			entriesEmpty = true
			return nil
		}
		snapEntries = len(sd.Entries)

		for _, fe := range sd.Entries {
			blob, ok := sd.Blobs[fe.Digest]
			if !ok {
				log.WithPath(fe.RelativePath).Warn().Msg("restore: dangling reference, skipping")
				continue
			}

			target := filepath.Join(outputRoot, filepath.FromSlash(fe.RelativePath))
			log.WithPath(target).Debug().Uint64("snapshot_id", snapshotID).Msg("restore: writing file")
			if err := e.fs.CreateDirectory(filepath.Dir(target)); err != nil {
				log.WithPath(target).Warn().Err(err).Msg("restore: failed to create parent directory, skipping file")
				metrics.FilesProcessedTotal.WithLabelValues("restore", "error").Inc()
				continue
			}
			if err := e.fs.WriteFile(target, blob.Bytes); err != nil {
				log.WithPath(target).Warn().Err(err).Msg("restore: failed to write file, skipping")
				metrics.FilesProcessedTotal.WithLabelValues("restore", "error").Inc()
				continue
			}
			metrics.FilesProcessedTotal.WithLabelValues("restore", "ok").Inc()

			restored++
			if restored%restoreProgressInterval == 0 {
				e.publish(events.EventFileProcessed, "restore progress", map[string]string{
					"snapshot_id": fmt.Sprint(snapshotID),
					"files":       fmt.Sprint(restored),
				})
			}
		}
		return nil
	})
	if err != nil {
		e.publish(events.EventRestoreFailed, err.Error(), map[string]string{"snapshot_id": fmt.Sprint(snapshotID)})
		return err
	}

	if entriesEmpty {
		e.publish(events.EventRestoreNoFiles, "no files for snapshot", map[string]string{
			"snapshot_id": fmt.Sprint(snapshotID),
		})
		return nil
	}

	e.publish(events.EventRestoreDone, "restore completed", map[string]string{
		"snapshot_id": fmt.Sprint(snapshotID),
		"files":       fmt.Sprint(restored),
		"total":       fmt.Sprint(snapEntries),
	})
	return nil
}

