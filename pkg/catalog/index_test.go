package catalog

import (
	"testing"
	"time"

	"github.com/cuemby/vaultkeep/pkg/store"
	"github.com/cuemby/vaultkeep/pkg/types"
	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

func TestSnapshotIndex_CreateGetExists(t *testing.T) {
	st := openTestStore(t)

	var id uint64
	err := st.Update(func(tx *store.Tx) error {
		si := NewSnapshotIndex(tx)

		var err error
		id, err = si.Create("/source", time.Now().UTC())
		if err != nil {
			return err
		}
		if id != 1 {
			t.Fatalf("expected first snapshot id == 1, got %d", id)
		}

		if !si.Exists(id) {
			t.Fatal("expected snapshot to exist")
		}

		detail, err := si.Get(id)
		if err != nil {
			return err
		}
		if detail.Snapshot.SourceRoot != "/source" {
			t.Fatalf("unexpected source_root: %s", detail.Snapshot.SourceRoot)
		}
		if len(detail.Entries) != 0 {
			t.Fatalf("expected no entries, got %d", len(detail.Entries))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestSnapshotIndex_Get_Missing(t *testing.T) {
	st := openTestStore(t)

	err := st.View(func(tx *store.Tx) error {
		si := NewSnapshotIndex(tx)
		if _, err := si.Get(999); !vkerrors.Is(err, vkerrors.KindSnapshotMissing) {
			t.Fatalf("expected KindSnapshotMissing, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
}

func TestSnapshotIndex_AddEntry_DanglingReference(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		si := NewSnapshotIndex(tx)
		id, err := si.Create("/source", time.Now().UTC())
		if err != nil {
			return err
		}
		if _, err := si.AddEntry(id, "nosuchdigest", "a.txt", "a.txt"); !vkerrors.Is(err, vkerrors.KindDanglingReference) {
			t.Fatalf("expected KindDanglingReference, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestSnapshotIndex_AddEntry_DuplicatePath(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		cc := NewContentCatalog(tx)
		si := NewSnapshotIndex(tx)

		blob := types.ContentBlob{Digest: "abc", Bytes: []byte("x"), Size: 1, CreatedAt: time.Now().UTC()}
		if err := cc.Insert(blob); err != nil {
			return err
		}

		id, err := si.Create("/source", time.Now().UTC())
		if err != nil {
			return err
		}
		if _, err := si.AddEntry(id, "abc", "a.txt", "a.txt"); err != nil {
			return err
		}
		if _, err := si.AddEntry(id, "abc", "a.txt", "a.txt"); !vkerrors.Is(err, vkerrors.KindDuplicatePath) {
			t.Fatalf("expected KindDuplicatePath, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestSnapshotIndex_DeleteCascadesEntries(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		cc := NewContentCatalog(tx)
		si := NewSnapshotIndex(tx)

		blob := types.ContentBlob{Digest: "abc", Bytes: []byte("x"), Size: 1, CreatedAt: time.Now().UTC()}
		if err := cc.Insert(blob); err != nil {
			return err
		}

		id, err := si.Create("/source", time.Now().UTC())
		if err != nil {
			return err
		}
		if _, err := si.AddEntry(id, "abc", "a.txt", "a.txt"); err != nil {
			return err
		}

		if err := si.Delete(id); err != nil {
			return err
		}

		if si.Exists(id) {
			t.Fatal("expected snapshot to be gone after delete")
		}

		remainingEntries := 0
		if err := tx.FileEntries().ForEach(func(_, _ []byte) error {
			remainingEntries++
			return nil
		}); err != nil {
			return err
		}
		if remainingEntries != 0 {
			t.Fatalf("expected file entries to be deleted with the snapshot, got %d", remainingEntries)
		}

		remaining, err := si.ListAll()
		if err != nil {
			return err
		}
		if len(remaining) != 0 {
			t.Fatalf("expected no snapshots remaining, got %d", len(remaining))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestSnapshotIndex_ListAll_AscendingByID(t *testing.T) {
	st := openTestStore(t)

	err := st.Update(func(tx *store.Tx) error {
		si := NewSnapshotIndex(tx)
		for i := 0; i < 3; i++ {
			if _, err := si.Create("/source", time.Now().UTC()); err != nil {
				return err
			}
		}

		all, err := si.ListAll()
		if err != nil {
			return err
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 snapshots, got %d", len(all))
		}
		for i, sd := range all {
			if sd.Snapshot.ID != uint64(i+1) {
				t.Fatalf("expected ascending ids, got %v at index %d", sd.Snapshot.ID, i)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}
