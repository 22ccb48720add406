package engine

import (
	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/events"
	"github.com/cuemby/vaultkeep/pkg/hash"
	"github.com/cuemby/vaultkeep/pkg/log"
	"github.com/cuemby/vaultkeep/pkg/metrics"
	"github.com/cuemby/vaultkeep/pkg/store"
)

// CorruptEntry describes one FileEntry verify found to be corrupt.
type CorruptEntry struct {
	SnapshotID   uint64
	FileName     string
	RelativePath string
}

// Verify rehashes every referenced blob across every snapshot and reports
// mismatches. It never mutates the store.
func (e *BackupEngine) Verify() ([]CorruptEntry, error) {
	logger := log.WithComponent("engine")
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.VerifyDuration)
	e.publish(events.EventVerifyStarted, "verify started", nil)

	var corrupt []CorruptEntry

	err := e.store.View(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)

		snapshots, err := si.ListAll()
		if err != nil {
			return err
		}

		for _, sd := range snapshots {
			for _, fe := range sd.Entries {
				blob, ok := sd.Blobs[fe.Digest]
				switch {
				case !ok:
					corrupt = append(corrupt, CorruptEntry{sd.Snapshot.ID, fe.FileName, fe.RelativePath})
				case fe.Digest == "":
					corrupt = append(corrupt, CorruptEntry{sd.Snapshot.ID, fe.FileName, fe.RelativePath})
				case blob.Bytes == nil:
					corrupt = append(corrupt, CorruptEntry{sd.Snapshot.ID, fe.FileName, fe.RelativePath})
				default:
					computed, err := hash.Compute(blob.Bytes)
					if err != nil {
						logger.Warn().Str("path", fe.RelativePath).Err(err).Msg("verify: hashing failed, skipping")
						continue
					}
					if !hash.Equal(computed, fe.Digest) {
						corrupt = append(corrupt, CorruptEntry{sd.Snapshot.ID, fe.FileName, fe.RelativePath})
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VerifyCorruptionTotal.Add(float64(len(corrupt)))
	e.publish(events.EventVerifyDone, "verify completed", nil)
	return corrupt, nil
}
