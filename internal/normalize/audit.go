// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qbank/pkg/types"
)

// Audit returns, in ascending order, the IDs in [first, last] whose
// canonical directory does not exist under outputRoot. The result is
// never nil.
func Audit(outputRoot string, first, last int) ([]int, error) {
	missing := []int{}
	for id := first; id <= last; id++ {
		info, err := os.Stat(filepath.Join(outputRoot, types.DirName(id)))
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil, os.IsNotExist(err):
			missing = append(missing, id)
		default:
			return nil, fmt.Errorf("auditing %s: %w", types.DirName(id), err)
		}
	}
	return missing, nil
}

// WriteReport writes report as YAML to path.
func WriteReport(path string, report types.BatchReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadReport loads a report previously written by WriteReport.
func ReadReport(path string) (types.BatchReport, error) {
	var report types.BatchReport
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("reading report: %w", err)
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return report, nil
}
