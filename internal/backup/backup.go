// Package backup archives the saved view database as tar.gz and restores
// it on another machine or after a reset.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const manifestName = "manifest.json"

// ErrExists is returned by Restore when a file would be overwritten.
var ErrExists = errors.New("backup: file already exists")

// Manifest describes an archive. It is stored as the first entry.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []string  `json:"files"`
}

// Database is the open database being archived.
type Database interface {
	Path() string
	Checkpoint(ctx context.Context) error
}

// Archive checkpoints db, then writes its file and, when it exists,
// configPath into a gzip-compressed tar stream on w.
func Archive(ctx context.Context, db Database, configPath, version string, w io.Writer) (Manifest, error) {
	dbPath := db.Path()
	if _, err := os.Stat(dbPath); err != nil {
		return Manifest{}, fmt.Errorf("backup: database: %w", err)
	}
	if err := db.Checkpoint(ctx); err != nil {
		return Manifest{}, err
	}

	files := []string{dbPath}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			files = append(files, configPath)
		}
	}
	m := Manifest{Version: version, CreatedAt: time.Now().UTC()}
	for _, f := range files {
		m.Files = append(m.Files, filepath.Base(f))
	}

	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)
	if err := writeManifest(tw, m); err != nil {
		return Manifest{}, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		if err := addFile(tw, f); err != nil {
			return Manifest{}, fmt.Errorf("backup: add %s: %w", f, err)
		}
	}
	if err := tw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("backup: close tar: %w", err)
	}
	if err := gw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("backup: close gzip: %w", err)
	}
	return m, nil
}

func writeManifest(tw *tar.Writer, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode manifest: %w", err)
	}
	hdr := &tar.Header{
		Name:    manifestName,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: m.CreatedAt,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("backup: manifest header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("backup: write manifest: %w", err)
	}
	return nil
}

func addFile(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts an archive written by Archive into dir. Existing files
// are left alone and reported as ErrExists unless force is set. Entries
// with directory components are rejected.
func Restore(ctx context.Context, r io.Reader, dir string, force bool) (Manifest, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return Manifest{}, fmt.Errorf("backup: open archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("backup: create %s: %w", dir, err)
	}

	var (
		m        Manifest
		restored []string
	)
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("backup: read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Name != filepath.Base(hdr.Name) || hdr.Name == ".." || hdr.Name == "." {
			return Manifest{}, fmt.Errorf("backup: unsafe entry %q", hdr.Name)
		}

		if hdr.Name == manifestName {
			if err := json.NewDecoder(tr).Decode(&m); err != nil {
				return Manifest{}, fmt.Errorf("backup: decode manifest: %w", err)
			}
			continue
		}
		if err := extract(tr, filepath.Join(dir, hdr.Name), hdr.Size, force); err != nil {
			return Manifest{}, err
		}
		restored = append(restored, hdr.Name)
	}
	if len(m.Files) == 0 {
		m.Files = restored
	}
	return m, nil
}

func extract(r io.Reader, path string, size int64, force bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("backup: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, io.LimitReader(r, size)); err != nil {
		f.Close()
		return fmt.Errorf("backup: write %s: %w", path, err)
	}
	return f.Close()
}
