package metrics

import (
	"time"

	"github.com/cuemby/vaultkeep/pkg/catalog"
	"github.com/cuemby/vaultkeep/pkg/store"
)

// Collector refreshes the catalog-derived gauges (blob counts, distinct
// and referenced byte totals, snapshot counts) from the store. Unlike a
// long-lived server's periodic scrape, vaultkeep's store is only open for
// the duration of one CLI invocation, so the CLI calls Collect once, when
// its --metrics-addr server starts (before the subcommand's operation
// runs), rather than on a ticker.
type Collector struct {
	st *store.Store
}

// NewCollector creates a new metrics collector bound to an open store.
func NewCollector(st *store.Store) *Collector {
	return &Collector{st: st}
}

// Collect recomputes every catalog gauge in a single read-only transaction.
func (c *Collector) Collect() error {
	return c.st.View(func(tx *store.Tx) error {
		si := catalog.NewSnapshotIndex(tx)

		blobCount := 0
		err := tx.Blobs().ForEach(func(_, _ []byte) error {
			blobCount++
			return nil
		})
		if err != nil {
			return err
		}

		snaps, err := si.ListAll()
		if err != nil {
			return err
		}

		var referencedBytes int64
		for _, s := range snaps {
			referencedBytes += s.TotalSize()
		}

		var distinctBytes int64
		seen := make(map[string]bool)
		for _, s := range snaps {
			for digest, blob := range s.Blobs {
				if seen[digest] {
					continue
				}
				seen[digest] = true
				distinctBytes += blob.Size
			}
		}

		BlobsTotal.Set(float64(blobCount))
		BytesDistinct.Set(float64(distinctBytes))
		BytesReferenced.Set(float64(referencedBytes))
		SnapshotsTotal.Set(float64(len(snaps)))
		return nil
	})
}

// StartPeriodic runs Collect on an interval until stopCh is closed, for use
// when a long-lived --metrics-addr server is serving stale-but-fresh-enough
// gauges between CLI invocations sharing the same store directory.
func StartPeriodic(c *Collector, interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		_ = c.Collect()
		for {
			select {
			case <-ticker.C:
				_ = c.Collect()
			case <-stopCh:
				return
			}
		}
	}()
}
