// Package seed loads starter categories, tags, collections and prompts
// into an organization through the vault services.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

// Document is the YAML seed file layout.
type Document struct {
	Categories  []Category   `yaml:"categories"`
	Tags        []Tag        `yaml:"tags"`
	Collections []Collection `yaml:"collections"`
	Prompts     []Prompt     `yaml:"prompts"`
}

type Category struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
	Color       *string `yaml:"color"`
	Icon        *string `yaml:"icon"`
}

type Tag struct {
	Name  string  `yaml:"name"`
	Color *string `yaml:"color"`
}

// Collection nests through Children.
type Collection struct {
	Name        string       `yaml:"name"`
	Description *string      `yaml:"description"`
	Children    []Collection `yaml:"children"`
}

// Prompt refers to its category by name and its collection by a
// slash-separated path from a root, e.g. "Team Playbooks/Onboarding".
type Prompt struct {
	Title       string   `yaml:"title"`
	Description *string  `yaml:"description"`
	Content     string   `yaml:"content"`
	Variables   []string `yaml:"variables"`
	Category    string   `yaml:"category"`
	Collection  string   `yaml:"collection"`
	Tags        []string `yaml:"tags"`
}

// Default returns the embedded starter document.
func Default() (*Document, error) {
	return Parse(bytes.NewReader(defaultDocument))
}

// Parse decodes a seed document. Unknown keys are rejected so typos fail
// loudly instead of seeding nothing.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("parse seed document: %w", err)
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	for i, c := range d.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
	}
	for i, t := range d.Tags {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tags[%d]: name is required", i)
		}
	}
	if err := validateCollections("collections", d.Collections); err != nil {
		return err
	}
	for i, p := range d.Prompts {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
			return fmt.Errorf("prompts[%d]: title and content are required", i)
		}
	}
	return nil
}

func validateCollections(path string, collections []Collection) error {
	for i, c := range collections {
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%s: name is required", at)
		}
		if strings.Contains(c.Name, "/") {
			return fmt.Errorf("%s: name %q must not contain '/'", at, c.Name)
		}
		if err := validateCollections(at+".children", c.Children); err != nil {
			return err
		}
	}
	return nil
}
