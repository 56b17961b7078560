// Package catalog holds the read-only workout plans, articles and meal plans.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Catalog is an immutable set of plans, articles and meal plans.
// It is safe for concurrent use: content goes in and comes out as deep copies.
type Catalog struct {
	plans     []Plan
	articles  []Article
	mealPlans []MealPlan

	planIdx     map[string]int
	exerciseIdx map[string]Exercise
	warnings    []string
}

// File is the on-disk layout of a catalog file
type File struct {
	Plans     []Plan     `yaml:"plans" toml:"plans"`
	Articles  []Article  `yaml:"articles" toml:"articles"`
	MealPlans []MealPlan `yaml:"meal_plans" toml:"meal_plans"`
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := New(DefaultPlans, DefaultArticles, DefaultMealPlans)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in data is invalid: %v", err))
	}
	return c
}

// New validates the given content and builds a Catalog from it.
// Structural problems (duplicate or empty IDs, negative durations) are errors.
// Exercises without instructions are accepted and reported through Warnings.
func New(plans []Plan, articles []Article, mealPlans []MealPlan) (*Catalog, error) {
	c := &Catalog{
		plans:       cloneAll(plans),
		articles:    cloneAll(articles),
		mealPlans:   cloneAll(mealPlans),
		planIdx:     make(map[string]int, len(plans)),
		exerciseIdx: make(map[string]Exercise),
	}

	var errs error
	for i, p := range c.plans {
		if p.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("plan #%d: missing id", i))
			continue
		}
		if _, dup := c.planIdx[p.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("plan %q: duplicate id", p.ID))
			continue
		}
		c.planIdx[p.ID] = i

		seen := make(map[string]bool, len(p.Exercises))
		for j, ex := range p.Exercises {
			switch {
			case ex.ID == "":
				errs = multierr.Append(errs, fmt.Errorf("plan %q exercise #%d: missing id", p.ID, j))
				continue
			case seen[ex.ID]:
				errs = multierr.Append(errs, fmt.Errorf("plan %q exercise %q: duplicate id", p.ID, ex.ID))
				continue
			case ex.DurationSeconds < 0:
				errs = multierr.Append(errs, fmt.Errorf("plan %q exercise %q: negative duration %d", p.ID, ex.ID, ex.DurationSeconds))
			}
			seen[ex.ID] = true
			if len(ex.Instructions) == 0 {
				c.warnings = append(c.warnings, fmt.Sprintf("plan %q exercise %q has no instructions", p.ID, ex.ID))
			}
			// first plan wins for the flattened lookup
			if _, ok := c.exerciseIdx[ex.ID]; !ok {
				c.exerciseIdx[ex.ID] = ex
			}
		}
		if len(p.Exercises) == 0 {
			c.warnings = append(c.warnings, fmt.Sprintf("plan %q has no exercises", p.ID))
		}
	}

	articleIDs := make(map[string]bool, len(c.articles))
	for i, a := range c.articles {
		if a.ID == "" || articleIDs[a.ID] {
			errs = multierr.Append(errs, fmt.Errorf("article #%d: missing or duplicate id %q", i, a.ID))
		}
		articleIDs[a.ID] = true
	}

	if errs != nil {
		return nil, errs
	}
	return c, nil
}

// Load reads a catalog file. The format is picked from the extension:
// .yaml/.yml or .toml. Sections missing from the file fall back to the built-in content.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing catalog yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parsing catalog toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	if len(f.Plans) == 0 {
		f.Plans = DefaultPlans
	}
	if len(f.Articles) == 0 {
		f.Articles = DefaultArticles
	}
	if len(f.MealPlans) == 0 {
		f.MealPlans = DefaultMealPlans
	}

	c, err := New(f.Plans, f.Articles, f.MealPlans)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ListPlans returns the plans in display order
func (c *Catalog) ListPlans() []Plan {
	return cloneAll(c.plans)
}

func (c *Catalog) Plan(id string) (Plan, error) {
	i, ok := c.planIdx[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return c.plans[i].clone(), nil
}

// Exercise looks an exercise up by ID across all plans
func (c *Catalog) Exercise(id string) (Exercise, error) {
	ex, ok := c.exerciseIdx[id]
	if !ok {
		return Exercise{}, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
	}
	return ex.clone(), nil
}

// ExerciseName resolves an exercise ID for display, falling back to a
// placeholder for IDs no longer in the catalog
func (c *Catalog) ExerciseName(id string) string {
	if ex, err := c.Exercise(id); err == nil {
		return ex.Name
	}
	return fmt.Sprintf("Unknown Exercise (ID: %s)", id)
}

func (c *Catalog) Articles() []Article {
	return cloneAll(c.articles)
}

func (c *Catalog) Article(id string) (Article, error) {
	for _, a := range c.articles {
		if a.ID == id {
			return a.clone(), nil
		}
	}
	return Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
}

func (c *Catalog) MealPlans() []MealPlan {
	return cloneAll(c.mealPlans)
}

// Warnings lists non-fatal content problems found while building the catalog
func (c *Catalog) Warnings() []string {
	return append([]string(nil), c.warnings...)
}
