package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestContentCatalog_InsertAndExists(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		cc := NewContentCatalog(tx)

		exists, err := cc.Exists("deadbeef")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Fatal("expected blob to not exist yet")
		}

		blob := types.ContentBlob{Digest: "deadbeef", Bytes: []byte("hi"), Size: 2, CreatedAt: time.Now().UTC()}
		if err := cc.Insert(blob); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		exists, err = cc.Exists("deadbeef")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !exists {
			t.Fatal("expected blob to exist after insert")
		}

		if err := cc.Insert(blob); !vkerrors.Is(err, vkerrors.KindDuplicateDigest) {
			t.Fatalf("expected KindDuplicateDigest, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestContentCatalog_OrphansAndDeleteMany(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		cc := NewContentCatalog(tx)
		si := NewSnapshotIndex(tx)

		referenced := types.ContentBlob{Digest: "ref1", Bytes: []byte("a"), Size: 1, CreatedAt: time.Now().UTC()}
		orphan := types.ContentBlob{Digest: "orphan1", Bytes: []byte("b"), Size: 1, CreatedAt: time.Now().UTC()}
		if err := cc.Insert(referenced); err != nil {
			return err
		}
		if err := cc.Insert(orphan); err != nil {
			return err
		}

		id, err := si.Create("/src", time.Now().UTC())
		if err != nil {
			return err
		}
		if _, err := si.AddEntry(id, "ref1", "a.txt", "a.txt"); err != nil {
			return err
		}

		orphans, err := cc.Orphans()
		if err != nil {
			return err
		}
		if len(orphans) != 1 || orphans[0].Digest != "orphan1" {
			t.Fatalf("expected exactly orphan1, got %+v", orphans)
		}

		if err := cc.DeleteMany([]types.ContentBlob{orphan}); err != nil {
			t.Fatalf("DeleteMany() error = %v", err)
		}

		if err := cc.DeleteMany([]types.ContentBlob{referenced}); !vkerrors.Is(err, vkerrors.KindReferentialViolation) {
			t.Fatalf("expected KindReferentialViolation, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestContentCatalog_DeleteMany_MissingBlob(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		cc := NewContentCatalog(tx)
		missing := types.ContentBlob{Digest: "nope"}
		if err := cc.DeleteMany([]types.ContentBlob{missing}); !vkerrors.Is(err, vkerrors.KindMissing) {
			t.Fatalf("expected KindMissing, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}
