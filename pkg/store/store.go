// Package store provides the transactional persistence substrate for
// vaultkeep: a single bbolt database holding one bucket per entity
// collection (spec §3), with bbolt's own transaction exposed as the
// "unit of work" of spec §4.2.
//
// Store itself stays generic — bucket access plus begin/commit/rollback.
// The entity-level invariants (uniqueness, referential integrity,
// orphan enumeration) live one layer up, in pkg/catalog, which works on
// the transactions that the engine and the metrics collector open here.
package store

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/vaultkeep/pkg/log"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

var (
	bucketBlobs       = []byte("blobs")
	bucketSnapshots   = []byte("snapshots")
	bucketFileEntries = []byte("file_entries")
	bucketMeta        = []byte("meta")
)

// MetaNextSnapshotID is the meta-bucket key holding the next snapshot id
// to assign.
var MetaNextSnapshotID = []byte("next_snapshot_id")

// Store is a bbolt-backed transactional key/value substrate.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and ensures
// all entity buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindTransactionFailed, "open store", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlobs, bucketSnapshots, bucketFileEntries, bucketMeta} {
			if _, err := btx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, vkerrors.Wrap(vkerrors.KindTransactionFailed, "init schema", err)
	}

	log.WithComponent("store").Debug().Str("path", path).Msg("store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk path of the database file.
func (s *Store) Path() string {
	return s.db.Path()
}

// Tx is the unit of work: a single bbolt transaction scoped to begin and
// commit-or-rollback exactly once (spec §4.2, §5).
type Tx struct {
	btx *bolt.Tx
}

func (t *Tx) Blobs() *bolt.Bucket       { return t.btx.Bucket(bucketBlobs) }
func (t *Tx) Snapshots() *bolt.Bucket   { return t.btx.Bucket(bucketSnapshots) }
func (t *Tx) FileEntries() *bolt.Bucket { return t.btx.Bucket(bucketFileEntries) }
func (t *Tx) Meta() *bolt.Bucket        { return t.btx.Bucket(bucketMeta) }

// Update runs fn inside a writable transaction. fn's returned error (or a
// panic) rolls the transaction back; a nil return commits. This is the
// sole way callers open a unit of work for mutating operations (snapshot
// creation, prune).
func (s *Store) Update(fn func(tx *Tx) error) error {
	err := s.db.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
	if err != nil {
		return wrapTxErr(err)
	}
	return nil
}

// View runs fn inside a read-only transaction. Used by restore, verify,
// and listing, none of which mutate the store.
func (s *Store) View(fn func(tx *Tx) error) error {
	err := s.db.View(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
	if err != nil {
		return wrapTxErr(err)
	}
	return nil
}

// wrapTxErr passes vkerrors.Error through unchanged (so callers can still
// branch on Kind) and wraps anything else as TransactionFailed, per the
// propagation policy of spec §7: "unexpected conditions are mapped to
// TransactionFailed with the substrate error attached."
func wrapTxErr(err error) error {
	var vkErr *vkerrors.Error
	if errors.As(err, &vkErr) {
		return err
	}
	return vkerrors.Wrap(vkerrors.KindTransactionFailed, "store transaction", err)
}
