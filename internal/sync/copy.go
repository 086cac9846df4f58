package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauern/snippetsync/internal/logging"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// copyFile copies src to dst byte for byte, preserving permissions and the
// modification time.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// #nosec G304 - src is a snippet file inside a configured store
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G302 G304 - preserving source permissions, dst is inside a configured store
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", dst, err)
	}

	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		logging.Debug("failed to preserve modification time", logging.Path(dst), logging.Err(err))
	}

	logging.Debug("copied file",
		logging.Path(src),
	)
	return nil
}

// writeFile writes data to dst, creating the parent directory when needed.
func writeFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	// #nosec G306 - snippet files are read by the editors
	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %q: %w", dst, err)
	}
	return nil
}
