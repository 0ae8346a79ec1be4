package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// transientSuffixes are files a running game may leave behind mid-write.
var transientSuffixes = []string{".tmp", "-wal", "-shm", "-journal"}

// IsTransient reports whether a data dir file is left out of backups.
func IsTransient(name string) bool {
	for _, s := range transientSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// BackupDataDir writes srcDir (settings, high scores, saves and the run history
// database) to a gzipped tarball. The archive appears at archivePath only once complete.
func BackupDataDir(srcDir, archivePath string) error {
	if strings.TrimSpace(srcDir) == "" || strings.TrimSpace(archivePath) == "" {
		return errors.New("data dir and archive path are required")
	}
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	tmp := archivePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := writeArchive(f, srcDir); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, archivePath)
}

func writeArchive(w io.Writer, srcDir string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir || d.Type()&os.ModeSymlink != 0 || IsTransient(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		return copyFile(tw, path)
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func copyFile(dst io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// RestoreDataDir unpacks an archive made by BackupDataDir into targetDir.
func RestoreDataDir(archivePath, targetDir string) error {
	if strings.TrimSpace(archivePath) == "" || strings.TrimSpace(targetDir) == "" {
		return errors.New("archive path and target dir are required")
	}
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		rel, err := archiveEntryPath(hdr.Name)
		if err != nil {
			return err
		}
		out := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := restoreFile(out, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}
	}
}

func restoreFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// archiveEntryPath rejects entries that would land outside the target dir.
func archiveEntryPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	switch {
	case name == "." || name == "":
		return "", errors.New("empty archive entry path")
	case filepath.IsAbs(name):
		return "", fmt.Errorf("absolute archive entry path: %s", name)
	case name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("archive entry escapes target dir: %s", name)
	}
	return name, nil
}
