package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the reference data used to validate imports and label months.
type Catalog struct {
	Sectors       []string      `yaml:"sectors" json:"sectors"`
	Categories    []Category    `yaml:"categories" json:"categories"`
	ImportAliases []ImportAlias `yaml:"import_aliases" json:"import_aliases"`
	Months        []string      `yaml:"months" json:"months"`
}

// Category is a permit category and the document types filed under it.
type Category struct {
	Name      string   `yaml:"name" json:"name"`
	Documents []string `yaml:"documents" json:"documents"`
}

// ImportAlias maps a source header fragment to a permit field.
type ImportAlias struct {
	Header string `yaml:"header" json:"header"`
	Field  string `yaml:"field" json:"field"`
}

// LoadCatalog reads the catalog at path, or the built-in catalog when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every section is populated and months are complete.
func (c *Catalog) Validate() error {
	var errs []string
	if len(c.Sectors) == 0 {
		errs = append(errs, "sectors is empty")
	}
	if len(c.Categories) == 0 {
		errs = append(errs, "categories is empty")
	}
	if len(c.Months) != 12 {
		errs = append(errs, fmt.Sprintf("months has %d entries, want 12", len(c.Months)))
	}
	seen := make(map[string]bool)
	for i, a := range c.ImportAliases {
		if strings.TrimSpace(a.Header) == "" || strings.TrimSpace(a.Field) == "" {
			errs = append(errs, fmt.Sprintf("import_aliases[%d] needs header and field", i))
			continue
		}
		if seen[a.Field] {
			errs = append(errs, fmt.Sprintf("import_aliases: duplicate field %q", a.Field))
		}
		seen[a.Field] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// HasSector reports whether s is a known sector.
func (c *Catalog) HasSector(s string) bool {
	for _, v := range c.Sectors {
		if v == s {
			return true
		}
	}
	return false
}

// Category looks up a permit category by exact name.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, v := range c.Categories {
		if v.Name == name {
			return v, true
		}
	}
	return Category{}, false
}

// MonthNumber returns the 1-based number of an Indonesian month name,
// ignoring case.
func (c *Catalog) MonthNumber(name string) (int, bool) {
	for i, m := range c.Months {
		if strings.EqualFold(m, strings.TrimSpace(name)) {
			return i + 1, true
		}
	}
	return 0, false
}
