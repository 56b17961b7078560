package catalog

import (
	"errors"
	"slices"
)

// DefaultExerciseSeconds is used when an exercise does not declare a duration
const DefaultExerciseSeconds = 30

// RestSeconds is the fixed rest between two exercises of a plan
const RestSeconds = 30

var (
	ErrPlanNotFound     = errors.New("workout plan not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrArticleNotFound  = errors.New("article not found")
)

// Media holds optional visual references for an exercise
type Media struct {
	Image     string `yaml:"image" toml:"image" json:"image,omitempty"`         // Still image
	Animation string `yaml:"animation" toml:"animation" json:"animation,omitempty"` // Looping animation (gif)
}

// Exercise is a single timed activity inside a plan
type Exercise struct {
	ID              string   `yaml:"id" toml:"id" json:"id"`
	Name            string   `yaml:"name" toml:"name" json:"name"`
	Instructions    []string `yaml:"instructions" toml:"instructions" json:"instructions"`
	Benefits        []string `yaml:"benefits" toml:"benefits" json:"benefits,omitempty"`
	Tips            []string `yaml:"tips" toml:"tips" json:"tips,omitempty"`
	DurationSeconds int      `yaml:"duration_seconds" toml:"duration_seconds" json:"duration_seconds,omitempty"` // 0 means DefaultExerciseSeconds
	Media           Media    `yaml:"media" toml:"media" json:"media"`
}

// Duration returns the active duration in seconds
func (e Exercise) Duration() int {
	if e.DurationSeconds > 0 {
		return e.DurationSeconds
	}
	return DefaultExerciseSeconds
}

func (e Exercise) clone() Exercise {
	e.Instructions = slices.Clone(e.Instructions)
	e.Benefits = slices.Clone(e.Benefits)
	e.Tips = slices.Clone(e.Tips)
	return e
}

// Plan is an ordered, named collection of exercises
type Plan struct {
	ID          string     `yaml:"id" toml:"id" json:"id"`
	Name        string     `yaml:"name" toml:"name" json:"name"`
	Description string     `yaml:"description" toml:"description" json:"description"`
	Image       string     `yaml:"image" toml:"image" json:"image,omitempty"`
	Exercises   []Exercise `yaml:"exercises" toml:"exercises" json:"exercises"`
}

// TotalSeconds returns the play time of the plan including the rests between exercises
func (p Plan) TotalSeconds() int {
	total := 0
	for _, ex := range p.Exercises {
		total += ex.Duration()
	}
	if len(p.Exercises) > 1 {
		total += (len(p.Exercises) - 1) * RestSeconds
	}
	return total
}

func (p Plan) clone() Plan {
	exercises := p.Exercises
	p.Exercises = nil
	if exercises != nil {
		p.Exercises = make([]Exercise, len(exercises))
		for i, ex := range exercises {
			p.Exercises[i] = ex.clone()
		}
	}
	return p
}

// Article is a piece of static educational content
type Article struct {
	ID       string   `yaml:"id" toml:"id" json:"id"`
	Title    string   `yaml:"title" toml:"title" json:"title"`
	Category string   `yaml:"category" toml:"category" json:"category"`
	ImageURL string   `yaml:"image_url" toml:"image_url" json:"image_url,omitempty"`
	Content  []string `yaml:"content" toml:"content" json:"content"`
}

func (a Article) clone() Article {
	a.Content = slices.Clone(a.Content)
	return a
}

// MealPlan is a section of eating guidance
type MealPlan struct {
	ID       string   `yaml:"id" toml:"id" json:"id"`
	Title    string   `yaml:"title" toml:"title" json:"title"`
	ImageURL string   `yaml:"image_url" toml:"image_url" json:"image_url,omitempty"`
	Content  []string `yaml:"content" toml:"content" json:"content"`
}

func (m MealPlan) clone() MealPlan {
	m.Content = slices.Clone(m.Content)
	return m
}

func cloneAll[T interface{ clone() T }](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}
