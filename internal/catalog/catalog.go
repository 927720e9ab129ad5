// Package catalog describes the class levels, subjects and chapter counts
// questions can be generated for.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrNotOffered     = errors.New("not offered")
)

type Subject struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Chapters int    `yaml:"chapters" json:"chapters"`
}

type Catalog struct {
	Classes  []int     `yaml:"classes" json:"classes"`
	Subjects []Subject `yaml:"subjects" json:"subjects"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic("catalog: embedded catalog is invalid: " + err.Error())
	}
	return c
}

// Load reads a catalog file; an empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(c.Classes) == 0 || len(c.Subjects) == 0 {
		return nil, errors.New("catalog: classes and subjects are required")
	}
	seen := map[string]bool{}
	for i, s := range c.Subjects {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" || s.Chapters <= 0 {
			return nil, fmt.Errorf("catalog: subject %d needs an id and a positive chapter count", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("catalog: duplicate subject %q", id)
		}
		seen[id] = true
		c.Subjects[i].ID = id
	}
	return &c, nil
}

func (c *Catalog) Subject(id string) (Subject, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range c.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// Validate checks that class level, subject and chapter all exist.
func (c *Catalog) Validate(classLevel int, subject string, chapter int) error {
	okClass := false
	for _, cl := range c.Classes {
		if cl == classLevel {
			okClass = true
			break
		}
	}
	if !okClass {
		return fmt.Errorf("%w: class level %d", ErrNotOffered, classLevel)
	}
	s, ok := c.Subject(subject)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
	}
	if chapter < 1 || chapter > s.Chapters {
		return fmt.Errorf("%w: %s has chapters 1-%d, got %d", ErrNotOffered, s.Name, s.Chapters, chapter)
	}
	return nil
}
