// Package catalog implements ContentCatalog and SnapshotIndex (spec §4.3)
// on top of the generic transactional substrate in pkg/store.
//
// Both types are transaction-scoped: a fresh ContentCatalog/SnapshotIndex
// is constructed around a *store.Tx for the lifetime of a single unit of
// work, the same way the teacher's BoltStore methods each open their own
// bolt.Tx — except here the transaction is threaded in by the engine so
// several operations (add a blob, add an entry) can share one commit.
package catalog

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

// ContentCatalog implements insert-if-absent, lookup, orphan enumeration,
// and bulk delete over ContentBlob records within one transaction.
type ContentCatalog struct {
	blobs   *bolt.Bucket
	entries *bolt.Bucket
}

// NewContentCatalog builds a ContentCatalog bound to tx's blob and file
// entry buckets.
func NewContentCatalog(tx *store.Tx) *ContentCatalog {
	return &ContentCatalog{blobs: tx.Blobs(), entries: tx.FileEntries()}
}

// Exists reports whether a blob with the given digest is present.
func (c *ContentCatalog) Exists(digest string) (bool, error) {
	return c.blobs.Get([]byte(digest)) != nil, nil
}

// Insert stores a new ContentBlob. It fails with KindDuplicateDigest if a
// blob with the same digest already exists.
func (c *ContentCatalog) Insert(blob types.ContentBlob) error {
	if c.blobs.Get([]byte(blob.Digest)) != nil {
		return vkerrors.New(vkerrors.KindDuplicateDigest, blob.Digest)
	}
	data, err := encode(blob)
	if err != nil {
		return vkerrors.Wrap(vkerrors.KindTransactionFailed, "encode blob", err)
	}
	if err := c.blobs.Put([]byte(blob.Digest), data); err != nil {
		return vkerrors.Wrap(vkerrors.KindTransactionFailed, "put blob", err)
	}
	return nil
}

// Get loads a single ContentBlob by digest.
func (c *ContentCatalog) Get(digest string) (types.ContentBlob, error) {
	data := c.blobs.Get([]byte(digest))
	if data == nil {
		return types.ContentBlob{}, vkerrors.New(vkerrors.KindMissing, digest)
	}
	var blob types.ContentBlob
	if err := decode(data, &blob); err != nil {
		return types.ContentBlob{}, vkerrors.Wrap(vkerrors.KindTransactionFailed, "decode blob", err)
	}
	return blob, nil
}

// referencedDigests returns the set of digests referenced by any
// FileEntry, across all snapshots.
func (c *ContentCatalog) referencedDigests() (map[string]bool, error) {
	refs := make(map[string]bool)
	err := c.entries.ForEach(func(_, v []byte) error {
		var fe types.FileEntry
		if err := decode(v, &fe); err != nil {
			return err
		}
		refs[fe.Digest] = true
		return nil
	})
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan file entries", err)
	}
	return refs, nil
}

// Orphans returns every ContentBlob with zero referencing FileEntries.
func (c *ContentCatalog) Orphans() ([]types.ContentBlob, error) {
	refs, err := c.referencedDigests()
	if err != nil {
		return nil, err
	}

	var orphans []types.ContentBlob
	err = c.blobs.ForEach(func(k, v []byte) error {
		if refs[string(k)] {
			return nil
		}
		var blob types.ContentBlob
		if err := decode(v, &blob); err != nil {
			return err
		}
		orphans = append(orphans, blob)
		return nil
	})
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindTransactionFailed, "scan blobs", err)
	}
	return orphans, nil
}

// DeleteMany removes each blob in blobs. The whole call fails atomically
// (no blob removed) with KindReferentialViolation if any blob still has a
// reference, or KindMissing if any blob is absent.
func (c *ContentCatalog) DeleteMany(blobs []types.ContentBlob) error {
	if len(blobs) == 0 {
		return nil
	}

	refs, err := c.referencedDigests()
	if err != nil {
		return err
	}

	for _, b := range blobs {
		if c.blobs.Get([]byte(b.Digest)) == nil {
			return vkerrors.New(vkerrors.KindMissing, b.Digest)
		}
		if refs[b.Digest] {
			return vkerrors.New(vkerrors.KindReferentialViolation, b.Digest)
		}
	}

	for _, b := range blobs {
		if err := c.blobs.Delete([]byte(b.Digest)); err != nil {
			return vkerrors.Wrap(vkerrors.KindTransactionFailed, "delete blob", err)
		}
	}
	return nil
}

func encode(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := msgpack.NewEncoder(buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}
