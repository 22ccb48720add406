package engine

import (
	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
)

// SnapshotAccounting is one row of the list output: a snapshot header
// plus its total and distinct storage sizes.
type SnapshotAccounting struct {
	Snapshot     types.Snapshot
	TotalSize    int64
	DistinctSize int64
}

// List computes per-snapshot total_size and distinct_size accounting for
// every snapshot, ordered ascending by id (spec §4.4.5).
func (e *BackupEngine) List() ([]SnapshotAccounting, error) {
	var result []SnapshotAccounting

	err := e.store.View(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)
		snapshots, err := si.ListAll()
		if err != nil {
			return err
		}

		owner := make(map[string]uint64)
		for _, sd := range snapshots {
			for _, fe := range sd.Entries {
				if _, taken := owner[fe.Digest]; !taken {
					owner[fe.Digest] = sd.Snapshot.ID
				}
			}
		}

		result = make([]SnapshotAccounting, 0, len(snapshots))
		for _, sd := range snapshots {
			acc := SnapshotAccounting{Snapshot: sd.Snapshot, TotalSize: sd.TotalSize()}

			counted := make(map[string]bool)
			for _, fe := range sd.Entries {
				if owner[fe.Digest] != sd.Snapshot.ID || counted[fe.Digest] {
					continue
				}
				counted[fe.Digest] = true
				if blob, ok := sd.Blobs[fe.Digest]; ok {
					acc.DistinctSize += blob.Size
				}
			}

			result = append(result, acc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Inspect returns one snapshot's detail (all FileEntries and the blobs
// they reference) for the inspect subcommand.
func (e *BackupEngine) Inspect(snapshotID uint64) (types.SnapshotDetail, error) {
	var detail types.SnapshotDetail
	err := e.store.View(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)
		d, err := si.Get(snapshotID)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	return detail, err
}
