package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	catalogFile = "catalog.yaml"
	storiesDir  = "stories"
)

// LoadStory loads a story from a YAML file. The story id is the file name
// without its extension.
func LoadStory(path string) (*Story, error) {
	// Resolve path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(cleanPath), filepath.Ext(cleanPath))
	return ParseStory(id, b)
}

// ParseStory decodes one story document.
func ParseStory(id string, b []byte) (*Story, error) {
	var s Story
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	s.ID = id
	if s.Start == "" {
		s.Start = startNode
	}
	if s.Title == "" {
		s.Title = id
	}
	for nid, n := range s.Nodes {
		if n == nil {
			return nil, fmt.Errorf("node %s: empty", nid)
		}
		if n.ID == "" {
			n.ID = nid
		}
		if n.Type == "" {
			n.Type = NodeStory
		}
	}
	return &s, nil
}

// ParseCatalog decodes the catalog document. Stories are loaded separately.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.Stories = map[string]*Story{}
	return &c, nil
}

// LoadCatalog reads dir/catalog.yaml and every dir/stories/*.yaml, then
// validates the result. Story files are parsed concurrently. The report is
// returned even when validation fails.
func LoadCatalog(ctx context.Context, dir string, opts ValidateOptions) (*Catalog, ValidationReport, error) {
	path := filepath.Clean(filepath.Join(dir, catalogFile))
	b, err := os.ReadFile(path) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, ValidationReport{}, err
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, ValidationReport{}, fmt.Errorf("%s: %w", catalogFile, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, storiesDir, "*.yaml"))
	if err != nil {
		return nil, ValidationReport{}, err
	}
	stories := make([]*Story, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := LoadStory(f)
			if err != nil {
				return fmt.Errorf("story %s: %w", filepath.Base(f), err)
			}
			stories[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ValidationReport{}, err
	}
	for _, s := range stories {
		c.Stories[s.ID] = s
	}

	report := c.Validate(opts)
	if err := report.Err(); err != nil {
		return nil, report, err
	}
	return c, report, nil
}
