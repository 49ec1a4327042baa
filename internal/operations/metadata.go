package operations

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kebairia/repobak/internal/backup"
)

const MetadataFilename = "metadata.json"

// WriteMetadata stores report as metadata.json in dirPath.
func WriteMetadata(fs afero.Fs, dirPath string, report *backup.Report) error {
	filePath := filepath.Join(dirPath, MetadataFilename)

	if err := fs.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("ensure metadata directory %q: %w", dirPath, err)
	}

	jsonFile, err := fs.Create(filePath)
	if err != nil {
		return fmt.Errorf("create metadata file %q: %w", filePath, err)
	}
	defer jsonFile.Close()

	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode metadata JSON: %w", err)
	}
	return nil
}

// LoadMetadata reads the metadata.json stored in dirPath.
func LoadMetadata(fs afero.Fs, dirPath string) (*backup.Report, error) {
	filePath := filepath.Join(dirPath, MetadataFilename)

	jsonFile, err := fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("couldn't open metadata file %q: %w", filePath, err)
	}
	defer jsonFile.Close()

	var report backup.Report
	if err := json.NewDecoder(jsonFile).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode metadata JSON: %w", err)
	}
	return &report, nil
}
