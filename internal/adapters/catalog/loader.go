package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type document struct {
	Categories []domain.ChecklistCategory `yaml:"categories"`
}

// Load reads a checklist definition from path, or the built-in checklist when
// path is empty.
func Load(path string) (*domain.Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		raw = data
	}
	return Parse(raw)
}

func Parse(raw []byte) (*domain.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c, err := domain.NewCatalog(doc.Categories)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}
