package workflow

import (
	"fmt"
	"io"
	"os"

	"github.com/ryanmoran/bitcache/internal"
)

// copyFile copies src to dst, replacing the content of dst if it exists.
// A newly created dst gets the permission bits of src.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w: %w", internal.ErrIO, err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w: %w", internal.ErrIO, err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w: %w", internal.ErrIO, err)
	}

	_, err = io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to copy file content: %w: %w", internal.ErrIO, err)
	}

	err = dstFile.Close()
	if err != nil {
		return fmt.Errorf("failed to write destination file: %w: %w", internal.ErrIO, err)
	}

	return nil
}
