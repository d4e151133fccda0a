package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/store"
)

func savedViewDB(t *testing.T, dir string) *store.SQLiteStore {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(dir, "pricescout.db")
	s, err := store.New(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo, err := services.NewSQLiteStateRepository(ctx, s)
	require.NoError(t, err)
	views := services.NewViewStates(repo, zap.NewNop())
	require.NoError(t, views.Save(ctx, "smartphones:smartphones", services.ViewState{
		SelectedBrands: []string{"apple"},
		CurrentPage:    2,
		Sort:           "price-low",
	}))
	return s
}

func TestArchiveRestore(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	s := savedViewDB(t, src)
	cfgPath := filepath.Join(src, "pricescout.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  base_url: http://example.test\n"), 0o600))

	var buf bytes.Buffer
	m, err := Archive(ctx, s, cfgPath, "1.2.3", &buf)
	require.NoError(t, err)
	require.Equal(t, []string{"pricescout.db", "pricescout.yaml"}, m.Files)

	dst := t.TempDir()
	restored, err := Restore(ctx, bytes.NewReader(buf.Bytes()), dst, false)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", restored.Version)
	require.Equal(t, m.Files, restored.Files)

	// The restored database carries the saved view.
	rs, err := store.New(ctx, filepath.Join(dst, "pricescout.db"))
	require.NoError(t, err)
	defer rs.Close()
	repo, err := services.NewSQLiteStateRepository(ctx, rs)
	require.NoError(t, err)
	vs, ok, err := services.NewViewStates(repo, zap.NewNop()).Load(ctx, "smartphones:smartphones")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, vs.CurrentPage)
	require.Equal(t, []string{"apple"}, vs.SelectedBrands)
}

func TestArchive_SkipsMissingConfig(t *testing.T) {
	s := savedViewDB(t, t.TempDir())
	var buf bytes.Buffer
	m, err := Archive(context.Background(), s, "/nonexistent/config.yaml", "dev", &buf)
	require.NoError(t, err)
	require.Equal(t, []string{"pricescout.db"}, m.Files)
}

func TestRestore_RefusesOverwriteWithoutForce(t *testing.T) {
	ctx := context.Background()
	s := savedViewDB(t, t.TempDir())
	var buf bytes.Buffer
	_, err := Archive(ctx, s, "", "dev", &buf)
	require.NoError(t, err)

	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dst, "pricescout.db"), []byte("old"), 0o600))

	_, err = Restore(ctx, bytes.NewReader(buf.Bytes()), dst, false)
	require.ErrorIs(t, err, ErrExists)

	_, err = Restore(ctx, bytes.NewReader(buf.Bytes()), dst, true)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dst, "pricescout.db"))
	require.NoError(t, err)
	require.NotEqual(t, "old", string(data))
}

func TestRestore_RejectsPathTraversal(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	body := []byte("x")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape.db", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())

	_, err = Restore(context.Background(), &buf, t.TempDir(), false)
	require.ErrorContains(t, err, "unsafe entry")
}

func TestArchive_InMemoryDatabase(t *testing.T) {
	s, err := store.New(context.Background(), store.MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	var buf bytes.Buffer
	_, err = Archive(context.Background(), s, "", "dev", &buf)
	require.Error(t, err)
}
