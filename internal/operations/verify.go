package operations

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/logger"
	"github.com/kebairia/repobak/internal/storage"
)

// VerifyStatus classifies one archive check.
type VerifyStatus string

const (
	VerifyOK           VerifyStatus = "ok"
	VerifyMissing      VerifyStatus = "missing"
	VerifySizeMismatch VerifyStatus = "size mismatch"
	VerifyCorrupt      VerifyStatus = "corrupt"
)

// VerifyResult is the check result for one recorded archive.
type VerifyResult struct {
	Name    string
	Path    string
	Status  VerifyStatus
	Entries int
	Err     error
}

// VerifySummary aggregates the checks of one backup directory.
type VerifySummary struct {
	Destination string
	Results     []VerifyResult
	OK          int
	Problems    int
}

// VerifyAll checks every archive that metadata.json in dir records as
// backed up: it must exist, match the recorded size and open as a zip whose
// entries pass their CRC checks. Archives are looked up by file name inside
// dir so a moved backup folder still verifies.
func VerifyAll(fs *storage.FS, dir string, log logger.Logger) (*VerifySummary, error) {
	report, err := LoadMetadata(fs.Afero(), dir)
	if err != nil {
		return nil, err
	}

	summary := &VerifySummary{Destination: dir}
	for _, o := range report.Outcomes {
		if !o.Succeeded {
			continue
		}
		result := verifyArchive(fs, o, filepath.Join(dir, filepath.Base(o.Path)))
		if result.Status == VerifyOK {
			summary.OK++
			log.Debug("archive verified", "repository", result.Name, "entries", result.Entries)
		} else {
			summary.Problems++
			log.Error("archive verification failed",
				"repository", result.Name,
				"path", result.Path,
				"status", string(result.Status),
				"error", fmt.Sprint(result.Err),
			)
		}
		summary.Results = append(summary.Results, result)
	}
	return summary, nil
}

func verifyArchive(fs *storage.FS, o backup.Outcome, path string) VerifyResult {
	result := VerifyResult{Name: o.Name, Path: path}

	if !fs.FileExists(path) {
		result.Status = VerifyMissing
		result.Err = fmt.Errorf("%s: no such file", path)
		return result
	}

	size, err := fs.GetFileSize(path)
	if err != nil {
		result.Status = VerifyMissing
		result.Err = err
		return result
	}
	if o.SizeBytes > 0 && size != o.SizeBytes {
		result.Status = VerifySizeMismatch
		result.Err = fmt.Errorf("size is %d bytes, recorded %d", size, o.SizeBytes)
		return result
	}

	var data []byte
	if IsCompressed(path) {
		data, err = DecompressZstd(fs.Afero(), path)
	} else {
		data, err = fs.ReadAllBytes(path)
	}
	if err != nil {
		result.Status = VerifyCorrupt
		result.Err = err
		return result
	}

	entries, err := checkZip(data)
	if err != nil {
		result.Status = VerifyCorrupt
		result.Err = err
		return result
	}
	result.Status = VerifyOK
	result.Entries = entries
	return result
}

// checkZip reads every entry of the archive so CRC mismatches surface.
func checkZip(data []byte) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", f.Name, err)
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	return len(zr.File), nil
}
