package fsgateway

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

func TestOSGateway_WriteReadFile(t *testing.T) {
	g := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	if err := g.WriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := g.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile() = %q, want %q", data, "hello")
	}
}

func TestOSGateway_ReadFile_Missing(t *testing.T) {
	g := New()
	_, err := g.ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	if !vkerrors.Is(err, vkerrors.KindReadFailed) {
		t.Errorf("ReadFile() error = %v, want KindReadFailed", err)
	}
}

func TestOSGateway_CreateDirectory_Idempotent(t *testing.T) {
	g := New()
	dir := filepath.Join(t.TempDir(), "nested", "child")

	if err := g.CreateDirectory(dir); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	if err := g.CreateDirectory(dir); err != nil {
		t.Fatalf("CreateDirectory() second call error = %v", err)
	}
	if !g.DirectoryExists(dir) {
		t.Error("DirectoryExists() should report true after creation")
	}
}

func TestOSGateway_CreateDirectory_EmptyPath(t *testing.T) {
	g := New()
	err := g.CreateDirectory("")
	if !vkerrors.Is(err, vkerrors.KindInvalidInput) {
		t.Errorf("CreateDirectory(\"\") error = %v, want KindInvalidInput", err)
	}
}

func TestOSGateway_ListFilesAndSubdirectories(t *testing.T) {
	g := New()
	dir := t.TempDir()

	if err := g.WriteFile(filepath.Join(dir, "a.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := g.CreateDirectory(filepath.Join(dir, "sub")); err != nil {
		t.Fatal(err)
	}

	files, err := g.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.txt" {
		t.Errorf("ListFiles() = %v, want [a.txt]", files)
	}

	subs, err := g.ListSubdirectories(dir)
	if err != nil {
		t.Fatalf("ListSubdirectories() error = %v", err)
	}
	if len(subs) != 1 || filepath.Base(subs[0]) != "sub" {
		t.Errorf("ListSubdirectories() = %v, want [sub]", subs)
	}
}

func TestOSGateway_FileExistsAndDirectoryExists(t *testing.T) {
	g := New()
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := g.WriteFile(file, []byte("x")); err != nil {
		t.Fatal(err)
	}

	if !g.FileExists(file) {
		t.Error("FileExists() should report true for a regular file")
	}
	if g.FileExists(dir) {
		t.Error("FileExists() should report false for a directory")
	}
	if !g.DirectoryExists(dir) {
		t.Error("DirectoryExists() should report true for a directory")
	}
	if g.DirectoryExists(file) {
		t.Error("DirectoryExists() should report false for a regular file")
	}
}
