package report

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"debtguardian/internal/coordinator"
)

// WriteArchive writes the canonical JSON report through a zstd stream.
// Archived runs of large repositories compress well; the .json.zst output
// is what retention jobs ship off-host.
func WriteArchive(w io.Writer, run *coordinator.Run) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := WriteJSON(zw, run); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadArchive decodes a zstd-compressed report back into raw JSON bytes.
func ReadArchive(r io.Reader) ([]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd reader: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
