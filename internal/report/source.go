package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/worktimer/internal/model"
)

// Source provides the raw collections for a report. The remote client
// implements it.
type Source interface {
	FetchDataset(ctx context.Context) (model.Dataset, error)
}

// FileSource reads a dataset from a JSON or YAML file, chosen by extension.
type FileSource struct {
	Path string
}

func (s FileSource) FetchDataset(_ context.Context) (model.Dataset, error) {
	var ds model.Dataset
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return ds, fmt.Errorf("reading dataset: %w", err)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	default:
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return ds, fmt.Errorf("parsing dataset %s: %w", s.Path, err)
	}
	return ds, nil
}
