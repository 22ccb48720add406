package catalog

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

// SnapshotIndex implements create/get/list/delete over Snapshot headers
// and their FileEntries within one transaction.
type SnapshotIndex struct {
	snapshots *bolt.Bucket
	entries   *bolt.Bucket
	blobs     *bolt.Bucket
	meta      *bolt.Bucket
}

// NewSnapshotIndex builds a SnapshotIndex bound to tx's snapshot, file
// entry, blob, and meta buckets.
func NewSnapshotIndex(tx *store.Tx) *SnapshotIndex {
	return &SnapshotIndex{
		snapshots: tx.Snapshots(),
		entries:   tx.FileEntries(),
		blobs:     tx.Blobs(),
		meta:      tx.Meta(),
	}
}

// Create assigns the next snapshot id, persists the Snapshot header, and
// returns the new id.
func (s *SnapshotIndex) Create(sourceRoot string, createdAt time.Time) (uint64, error) {
	id, err := s.nextID()
	if err != nil {
		return 0, err
	}

	snap := types.Snapshot{ID: id, CreatedAt: createdAt, SourceRoot: sourceRoot}
	data, err := encode(snap)
	if err != nil {
		return 0, vkerrors.Wrap(vkerrors.KindTransactionFailed, "encode snapshot", err)
	}
	if err := s.snapshots.Put(idKey(id), data); err != nil {
		return 0, vkerrors.Wrap(vkerrors.KindTransactionFailed, "put snapshot", err)
	}
	if err := s.putNextID(id + 1); err != nil {
		return 0, err
	}
	return id, nil
}

// Exists reports whether a snapshot with the given id is present.
func (s *SnapshotIndex) Exists(id uint64) bool {
	return s.snapshots.Get(idKey(id)) != nil
}

// Get loads a Snapshot header plus all of its FileEntries and the
// ContentBlobs those entries reference.
func (s *SnapshotIndex) Get(id uint64) (types.SnapshotDetail, error) {
	data := s.snapshots.Get(idKey(id))
	if data == nil {
		return types.SnapshotDetail{}, vkerrors.New(vkerrors.KindSnapshotMissing, snapshotDetail(id))
	}

	var snap types.Snapshot
	if err := decode(data, &snap); err != nil {
		return types.SnapshotDetail{}, vkerrors.Wrap(vkerrors.KindTransactionFailed, "decode snapshot", err)
	}

	detail := types.SnapshotDetail{Snapshot: snap, Blobs: make(map[string]types.ContentBlob)}

	err := s.entries.ForEach(func(_, v []byte) error {
		var fe types.FileEntry
		if err := decode(v, &fe); err != nil {
			return err
		}
		if fe.SnapshotID != id {
			return nil
		}
		detail.Entries = append(detail.Entries, fe)
		if _, ok := detail.Blobs[fe.Digest]; ok {
			return nil
		}
		blobData := s.blobs.Get([]byte(fe.Digest))
		if blobData == nil {
			return nil
		}
		var blob types.ContentBlob
		if err := decode(blobData, &blob); err != nil {
			return err
		}
		detail.Blobs[fe.Digest] = blob
		return nil
	})
	if err != nil {
		return types.SnapshotDetail{}, vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan file entries", err)
	}

	return detail, nil
}

// ListAll returns every snapshot's detail, ordered ascending by id.
func (s *SnapshotIndex) ListAll() ([]types.SnapshotDetail, error) {
	var ids []uint64
	err := s.snapshots.ForEach(func(k, _ []byte) error {
		ids = append(ids, binary.BigEndian.Uint64(k))
		return nil
	})
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan snapshots", err)
	}

	details := make([]types.SnapshotDetail, 0, len(ids))
	for _, id := range ids {
		d, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Delete removes the Snapshot header and cascades to every FileEntry that
// references it. It is a no-op if the snapshot is absent.
func (s *SnapshotIndex) Delete(id uint64) error {
	if !s.Exists(id) {
		return nil
	}

	var toDelete [][]byte
	err := s.entries.ForEach(func(k, v []byte) error {
		var fe types.FileEntry
		if err := decode(v, &fe); err != nil {
			return err
		}
		if fe.SnapshotID == id {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan file entries", err)
	}

	for _, k := range toDelete {
		if err := s.entries.Delete(k); err != nil {
			return vkerrors.Wrap(vkerrors.KindTransactionFailed, "delete file entry", err)
		}
	}

	if err := s.snapshots.Delete(idKey(id)); err != nil {
		return vkerrors.Wrap(vkerrors.KindTransactionFailed, "delete snapshot", err)
	}
	return nil
}

// AddEntry records one relative-path-to-digest mapping within a snapshot.
// It fails with KindDuplicatePath if the snapshot already has an entry at
// relativePath, and KindDanglingReference if digest names no ContentBlob.
func (s *SnapshotIndex) AddEntry(snapshotID uint64, digest, relativePath, fileName string) (string, error) {
	if s.blobs.Get([]byte(digest)) == nil {
		return "", vkerrors.New(vkerrors.KindDanglingReference, digest)
	}

	dup, err := s.entryExists(snapshotID, relativePath)
	if err != nil {
		return "", err
	}
	if dup {
		return "", vkerrors.New(vkerrors.KindDuplicatePath, relativePath)
	}

	id := uuid.NewString()
	fe := types.FileEntry{
		ID:           id,
		SnapshotID:   snapshotID,
		Digest:       digest,
		RelativePath: relativePath,
		FileName:     fileName,
	}
	data, err := encode(fe)
	if err != nil {
		return "", vkerrors.Wrap(vkerrors.KindTransactionFailed, "encode file entry", err)
	}
	if err := s.entries.Put([]byte(id), data); err != nil {
		return "", vkerrors.Wrap(vkerrors.KindTransactionFailed, "put file entry", err)
	}
	return id, nil
}

func (s *SnapshotIndex) entryExists(snapshotID uint64, relativePath string) (bool, error) {
	found := false
	err := s.entries.ForEach(func(_, v []byte) error {
		var fe types.FileEntry
		if err := decode(v, &fe); err != nil {
			return err
		}
		if fe.SnapshotID == snapshotID && fe.RelativePath == relativePath {
			found = true
		}
		return nil
	})
	if err != nil {
		return false, vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan file entries", err)
	}
	return found, nil
}

func (s *SnapshotIndex) nextID() (uint64, error) {
	data := s.meta.Get(store.MetaNextSnapshotID)
	if data == nil {
		return 1, nil
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *SnapshotIndex) putNextID(next uint64) error {
	if err := s.meta.Put(store.MetaNextSnapshotID, idKey(next)); err != nil {
		return vkerrors.Wrap(vkerrors.KindTransactionFailed, "put next snapshot id", err)
	}
	return nil
}

func idKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func snapshotDetail(id uint64) string {
	return "snapshot " + strconv.FormatUint(id, 10)
}
