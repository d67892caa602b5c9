// Package catalog serves the read-only portfolio project list.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var projectsYAML []byte

// ErrProjectNotFound is returned by Get for unknown ids.
var ErrProjectNotFound = errors.New("project not found")

// TechIcon is a technology badge.
type TechIcon struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// Project is one portfolio entry.
type Project struct {
	ID               string     `yaml:"id" json:"id"`
	Title            string     `yaml:"title" json:"title"`
	ShortDescription string     `yaml:"short_description" json:"shortDescription"`
	Description      string     `yaml:"description" json:"description"`
	Image            string     `yaml:"image" json:"image"`
	Technologies     []string   `yaml:"technologies" json:"technologies"`
	TechIcons        []TechIcon `yaml:"tech_icons" json:"techIcons"`
	GithubURL        string     `yaml:"github_url,omitempty" json:"githubUrl,omitempty"`
	LiveURL          string     `yaml:"live_url,omitempty" json:"liveUrl,omitempty"`
	Featured         bool       `yaml:"featured" json:"featured"`
	Category         string     `yaml:"category" json:"category"`
	Overview         string     `yaml:"overview" json:"overview"`
	KeyFeatures      []string   `yaml:"key_features" json:"keyFeatures"`
	Challenges       []string   `yaml:"challenges" json:"challenges"`
	Solutions        []string   `yaml:"solutions" json:"solutions"`
	Screenshots      []string   `yaml:"screenshots" json:"screenshots"`
	DemoVideo        string     `yaml:"demo_video,omitempty" json:"demoVideo,omitempty"`
	CompletionDate   string     `yaml:"completion_date" json:"completionDate"`
	TeamSize         int        `yaml:"team_size" json:"teamSize"`
	Role             string     `yaml:"role" json:"role"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Category     string
	FeaturedOnly bool
}

// Catalog is an immutable, ordered project list. Safe for concurrent use.
type Catalog struct {
	projects []Project
	byID     map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(projectsYAML)
}

// Parse builds a catalog from YAML with a top-level "projects" list.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Projects []Project `yaml:"projects"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	byID := make(map[string]int, len(doc.Projects))
	for i, p := range doc.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project %d has no id", i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate project id %q", p.ID)
		}
		byID[p.ID] = i
	}
	return &Catalog{projects: doc.Projects, byID: byID}, nil
}

// List returns the projects matching f in catalog order.
func (c *Catalog) List(f Filter) []Project {
	return lo.Filter(c.projects, func(p Project, _ int) bool {
		if f.FeaturedOnly && !p.Featured {
			return false
		}
		return f.Category == "" || strings.EqualFold(p.Category, f.Category)
	})
}

// Get returns the project with the given id.
func (c *Catalog) Get(id string) (Project, error) {
	i, ok := c.byID[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return c.projects[i], nil
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	return lo.Uniq(lo.Map(c.projects, func(p Project, _ int) string { return p.Category }))
}
