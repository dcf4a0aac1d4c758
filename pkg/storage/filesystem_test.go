package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemWriteAndRead(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystem(root, "public")

	ctx := context.Background()
	if _, err := provider.Exec(ctx, OpEnsureDir, "public/blog"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	content := []byte("<html>hello</html>")
	if _, err := provider.Exec(ctx, OpWrite, "public/blog/index.html", bytes.NewReader(content)); err != nil {
		t.Fatalf("write: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "blog", "index.html"))
	if err != nil {
		t.Fatalf("read from disk: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatalf("unexpected content on disk: %q", onDisk)
	}

	rows, err := provider.Query(ctx, OpRead, "public/blog/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil {
		t.Fatal("expected rows for existing file")
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var roundTrip []byte
	if err := rows.Scan(&roundTrip); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !bytes.Equal(roundTrip, content) {
		t.Fatalf("unexpected content from provider: %q", roundTrip)
	}
	if rows.Next() {
		t.Fatal("expected a single row")
	}
}

func TestFilesystemReadMissingFile(t *testing.T) {
	provider := NewFilesystem(t.TempDir(), "public")

	rows, err := provider.Query(context.Background(), OpRead, "public/missing.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatal("expected nil rows for missing file")
	}
}

func TestFilesystemRemove(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystem(root, "public")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, OpWrite, "public/about/index.html", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, OpRemove, "public/about"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "about")); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, got %v", err)
	}

	// Removing an already missing path is a no-op.
	if _, err := provider.Exec(ctx, OpRemove, "public/about"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestFilesystemTransactionDelegates(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystem(root, "public")

	err := provider.Transaction(context.Background(), func(tx Transaction) error {
		_, err := tx.Exec(context.Background(), OpWrite, "public/index.html", bytes.NewReader([]byte("home")))
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		t.Fatalf("expected file written through transaction: %v", err)
	}
}
