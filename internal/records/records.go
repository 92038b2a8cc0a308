// Package records loads the custom record categories an organization asks
// its members to fill in. Definitions live in a YAML file:
//
//	categories:
//	  - id: medical
//	    name: Medische fiche
//	    scope: member
//	    records:
//	      - id: allergies
//	        name: Allergieën
//	        type: textarea
package records

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/memberimport/internal/entities"
)

type file struct {
	Categories []entities.RecordCategory `yaml:"categories"`
}

// Load reads record categories from path. A missing file yields no categories.
func Load(path string) ([]entities.RecordCategory, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates record categories.
func Parse(r io.Reader) ([]entities.RecordCategory, error) {
	var parsed file
	if err := yaml.NewDecoder(r).Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}

	seen := make(map[string]bool)
	for i := range parsed.Categories {
		category := &parsed.Categories[i]
		if category.ID == "" {
			return nil, fmt.Errorf("record category %d has no id", i)
		}
		if category.Scope == "" {
			category.Scope = entities.RecordScopeMember
		}
		if category.Scope != entities.RecordScopeMember && category.Scope != entities.RecordScopeRegistration {
			return nil, fmt.Errorf("record category %s: unknown scope %q", category.ID, category.Scope)
		}
		for j := range category.Records {
			record := &category.Records[j]
			if record.ID == "" {
				return nil, fmt.Errorf("record category %s: record %d has no id", category.ID, j)
			}
			if seen[record.ID] {
				return nil, fmt.Errorf("duplicate record id %s", record.ID)
			}
			seen[record.ID] = true
			if record.Type == "" {
				record.Type = entities.RecordTypeText
			}
			if record.Type == entities.RecordTypeChoice && len(record.Choices) == 0 {
				return nil, fmt.Errorf("record %s: choice records need choices", record.ID)
			}
		}
	}

	return parsed.Categories, nil
}

// Find returns the record with the given id.
func Find(categories []entities.RecordCategory, id string) (entities.Record, bool) {
	for _, c := range categories {
		for _, r := range c.Records {
			if r.ID == id {
				return r, true
			}
		}
	}
	return entities.Record{}, false
}
