package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRecord is the machine-readable projection of a Record.
type yamlRecord struct {
	File     string `yaml:"file"`
	Line     int    `yaml:"line"`
	Code     string `yaml:"code,omitempty"`
	Previous int64  `yaml:"previous"`
	Current  int64  `yaml:"current"`
	Path     []int  `yaml:"path"`
}

// WriteYAML writes the findings as a YAML document, for consumption by
// other tooling.
func WriteYAML(path string, records []Record) error {
	out := make([]yamlRecord, 0, len(records))

	for _, record := range records {
		out = append(out, yamlRecord{
			File:     record.File,
			Line:     record.Line,
			Code:     record.Code,
			Previous: record.Previous,
			Current:  record.Current,
			Path:     []int(record.FullPath),
		})
	}

	data, marshalErr := yaml.Marshal(out)
	if marshalErr != nil {
		return fmt.Errorf("marshal findings: %w", marshalErr)
	}

	writeErr := os.WriteFile(path, data, reportFilePerm)
	if writeErr != nil {
		return fmt.Errorf("write findings: %w", writeErr)
	}

	return nil
}
