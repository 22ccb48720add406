package engine

import (
	"fmt"

	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/events"
	"github.com/cuemby/vaultkeep/pkg/metrics"
	"github.com/cuemby/vaultkeep/pkg/store"
)

// Prune deletes snapshotID and reclaims any ContentBlob left orphaned by
// that deletion, all in one transaction. existed reports whether the
// snapshot was present before pruning; callers that must exit non-zero
// for an unknown id (the CLI's prune command) branch on it, since the
// underlying operation itself treats a missing snapshot as a no-op
// rather than an error.
func (e *BackupEngine) Prune(snapshotID uint64) (existed bool, err error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PruneDuration)

	e.publish(events.EventPruneStarted, "prune started", map[string]string{"snapshot_id": fmt.Sprint(snapshotID)})

	var reclaimed int
	txErr := e.store.Update(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)
		cc := catalog.NewContentCatalog(tx)

		existed = si.Exists(snapshotID)
		if existed {
			if err := si.Delete(snapshotID); err != nil {
				return err
			}
		}

		orphans, err := cc.Orphans()
		if err != nil {
			return err
		}
		if len(orphans) > 0 {
			if err := cc.DeleteMany(orphans); err != nil {
				return err
			}
		}
		reclaimed = len(orphans)
		return nil
	})
	if txErr != nil {
		e.publish(events.EventPruneFailed, txErr.Error(), map[string]string{"snapshot_id": fmt.Sprint(snapshotID)})
		return false, txErr
	}
	metrics.OrphansReclaimed.Add(float64(reclaimed))

	e.publish(events.EventPruneDone, "prune completed", map[string]string{
		"snapshot_id": fmt.Sprint(snapshotID),
		"reclaimed":   fmt.Sprint(reclaimed),
	})
	return existed, nil
}
