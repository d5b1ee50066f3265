package entitlement

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the on-disk shape of a plan catalog:
//
//	plans:
//	  - id: price_basic_monthly
//	    name: Basic
//	    units_per_cycle: 1000
type yamlCatalogFile struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	UnitsPerCycle int    `yaml:"units_per_cycle"`
}

// NewYAMLCatalog loads a plan catalog from a YAML file. The file is read
// once; edits require constructing a new catalog.
func NewYAMLCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var file yamlCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: plan with empty id", ErrInvalidCatalog)
		}
		if p.UnitsPerCycle < 0 {
			return nil, fmt.Errorf("%w: plan %s has negative units_per_cycle", ErrInvalidCatalog, p.ID)
		}
		if _, exists := plans[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate plan id %s", ErrInvalidCatalog, p.ID)
		}
		plans[p.ID] = Plan{
			ID:            p.ID,
			Name:          p.Name,
			UnitsPerCycle: p.UnitsPerCycle,
		}
	}

	return NewInMemCatalog(plans), nil
}
