package config

import (
	"fmt"
	"os"

	"conference-api/models"

	"gopkg.in/yaml.v3"
)

// TaxonomyFile is the YAML document accepted by TAXONOMY_FILE.
type TaxonomyFile struct {
	Tracks             []models.Track `yaml:"tracks"`
	CrossCuttingThemes []string       `yaml:"cross_cutting_themes"`
}

// LoadTaxonomyFile decodes a taxonomy override file.
func LoadTaxonomyFile(path string) (*TaxonomyFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	var doc TaxonomyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	if len(doc.Tracks) == 0 {
		return nil, fmt.Errorf("taxonomy file %s defines no tracks", path)
	}
	return &doc, nil
}

// EncodeTaxonomyFile renders a taxonomy as YAML.
func EncodeTaxonomyFile(doc TaxonomyFile) ([]byte, error) {
	return yaml.Marshal(doc)
}
