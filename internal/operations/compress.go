package operations

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/kebairia/repobak/internal/backup"
)

// ZstdExtension is appended to compressed archives.
const ZstdExtension = ".zst"

// CompressZstd compresses inputPath into inputPath.zst and removes the
// original. It returns the path of the compressed file. On failure the
// original is kept and no partial .zst is left behind.
func CompressZstd(fs afero.Fs, inputPath string) (_ string, err error) {
	outputPath := inputPath + ZstdExtension

	inFile, err := fs.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	outFile, err := fs.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	// Runs after outFile is closed.
	defer func() {
		if err != nil {
			_ = fs.Remove(outputPath)
		}
	}()
	defer outFile.Close()

	writer, err := zstd.NewWriter(outFile)
	if err != nil {
		return "", fmt.Errorf("failed to create Zstandard writer: %w", err)
	}
	if _, err := io.Copy(writer, inFile); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to compress file: %w", err)
	}
	// Close flushes the final frame; it must happen before the file is closed.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish Zstandard stream: %w", err)
	}

	if err := fs.Remove(inputPath); err != nil {
		return "", fmt.Errorf("failed to remove original file: %w", err)
	}

	return outputPath, nil
}

// DecompressZstd reads the whole zstd stream at path into memory.
func DecompressZstd(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed file: %w", err)
	}
	defer f.Close()

	reader, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zstandard reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress file: %w", err)
	}
	return data, nil
}

// IsCompressed reports whether path names a zstd archive.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ZstdExtension)
}

// compressingDownloader compresses every archive the wrapped downloader
// writes. A compression failure fails the download.
type compressingDownloader struct {
	next backup.Downloader
	fs   afero.Fs
}

func (d *compressingDownloader) Download(ctx context.Context, owner, name, branch, destination string) (string, error) {
	path, err := d.next.Download(ctx, owner, name, branch, destination)
	if err != nil {
		return "", err
	}
	compressed, err := CompressZstd(d.fs, path)
	if err != nil {
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	return compressed, nil
}
