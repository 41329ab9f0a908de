// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qbank/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes every catalogued question, in ID order, to path.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	questions, err := s.all(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every catalogued question, in ID order, to path.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	questions, err := s.all(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) all(ctx context.Context) ([]types.Question, error) {
	results, err := s.Retrieve(ctx, QueryOptions{MaxResults: exportLimit})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	questions := make([]types.Question, len(results))
	for i, r := range results {
		questions[i] = r.Question
	}
	return questions, nil
}
