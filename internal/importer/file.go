package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/idam-admin/idam/internal/db/models"
)

// ReadFile decodes a JSON array of import records.
func ReadFile(path string) ([]models.ImportUser, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	var records []models.ImportUser
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode import file %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return records, nil
}
