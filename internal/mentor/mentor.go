// Package mentor assigns AI mentor personas to spaces and builds the
// prompts used for generation.
package mentor

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goalspace/goalspace/internal/model"
)

// catalogEntry is one persona in a YAML catalog file.
type catalogEntry struct {
	Name         string   `yaml:"name"`
	Category     string   `yaml:"category"`
	Expertise    []string `yaml:"expertise"`
	Personality  string   `yaml:"personality"`
	Introduction string   `yaml:"introduction"`
}

type catalogFile struct {
	Mentors []catalogEntry `yaml:"mentors"`
}

// Catalog holds the available mentor personas per category.
type Catalog struct {
	personas map[model.GoalCategory][]model.Mentor
}

var builtin = map[model.GoalCategory][]model.Mentor{
	model.CategoryLearning: {
		{
			Name:         "Dr. Maya Chen",
			Expertise:    []string{"pedagogy", "deliberate practice", "curriculum design"},
			Personality:  "patient and methodical, breaks everything into small steps",
			Introduction: "Hi, I'm Maya. We'll build this skill one deliberate step at a time.",
		},
		{
			Name:         "Professor Ellis",
			Expertise:    []string{"first principles", "socratic questioning"},
			Personality:  "curious and rigorous, answers questions with better questions",
			Introduction: "Ellis here. Expect me to ask you *why* a lot.",
		},
	},
	model.CategoryAchievement: {
		{
			Name:         "Coach Rivera",
			Expertise:    []string{"habit formation", "accountability", "milestone planning"},
			Personality:  "energetic and direct, keeps score relentlessly",
			Introduction: "Rivera here. Let's pick a finish line and run at it.",
		},
		{
			Name:         "Sam Okafor",
			Expertise:    []string{"project management", "prioritization"},
			Personality:  "calm and pragmatic, allergic to overcommitment",
			Introduction: "I'm Sam. We'll do less, but finish it.",
		},
	},
}

// palettes are the color trios cycled across a user's spaces by order index.
var palettes = []model.Palette{
	{Main: "#6366f1", Secondary: "#a5b4fc", Tertiary: "#e0e7ff"},
	{Main: "#10b981", Secondary: "#6ee7b7", Tertiary: "#d1fae5"},
	{Main: "#f59e0b", Secondary: "#fcd34d", Tertiary: "#fef3c7"},
	{Main: "#ef4444", Secondary: "#fca5a5", Tertiary: "#fee2e2"},
	{Main: "#8b5cf6", Secondary: "#c4b5fd", Tertiary: "#ede9fe"},
	{Main: "#06b6d4", Secondary: "#67e8f9", Tertiary: "#cffafe"},
}

// LoadCatalog returns the persona catalog. When path names a readable YAML
// catalog its personas replace the built-ins for the categories it covers;
// a missing file falls back to the built-ins.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{personas: map[model.GoalCategory][]model.Mentor{}}
	for cat, list := range builtin {
		c.personas[cat] = list
	}

	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read mentor catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mentor catalog: %w", err)
	}

	custom := map[model.GoalCategory][]model.Mentor{}
	for _, e := range f.Mentors {
		cat := model.GoalCategory(e.Category)
		if !model.ValidCategories[cat] {
			return nil, fmt.Errorf("mentor %q: invalid category %q", e.Name, e.Category)
		}
		custom[cat] = append(custom[cat], model.Mentor{
			Name:         e.Name,
			Expertise:    e.Expertise,
			Personality:  e.Personality,
			Introduction: e.Introduction,
		})
	}
	for cat, list := range custom {
		c.personas[cat] = list
	}
	return c, nil
}

// Assign picks a persona for a space deterministically from its category and
// title, and fills in the system instruction.
func (c *Catalog) Assign(category model.GoalCategory, title string) model.Mentor {
	list := c.personas[category]
	if len(list) == 0 {
		list = c.personas[model.CategoryLearning]
	}
	h := fnv.New32a()
	h.Write([]byte(title))
	m := list[int(h.Sum32())%len(list)]
	m.System = SystemPrompt(m, title)
	return m
}

// PaletteFor cycles the fixed palette list by space order index.
func PaletteFor(orderIndex int) model.Palette {
	if orderIndex < 0 {
		orderIndex = 0
	}
	return palettes[orderIndex%len(palettes)]
}

// SystemPrompt builds the system instruction for a mentor in a space.
func SystemPrompt(m model.Mentor, spaceTitle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a mentor guiding the user through %q.\n", m.Name, spaceTitle)
	if len(m.Expertise) > 0 {
		fmt.Fprintf(&b, "Your expertise: %s.\n", strings.Join(m.Expertise, ", "))
	}
	if m.Personality != "" {
		fmt.Fprintf(&b, "Your style: %s.\n", m.Personality)
	}
	b.WriteString("Answer in markdown. When producing a reference document, " +
		"put it after a line starting with DOCUMENT:. When suggesting " +
		"concrete next actions, put them after a line starting with TASKS: " +
		"as a JSON array of {\"title\", \"description\"} objects.")
	return b.String()
}

// PlanPrompt asks for a structured learning plan for a space.
func PlanPrompt(sp model.Space) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a structured learning plan for %q.\n", sp.Title)
	if sp.Description != "" {
		fmt.Fprintf(&b, "Context: %s\n", sp.Description)
	}
	if len(sp.Objectives) > 0 {
		fmt.Fprintf(&b, "Objectives: %s\n", strings.Join(sp.Objectives, "; "))
	}
	if len(sp.Prerequisites) > 0 {
		fmt.Fprintf(&b, "Assumed prerequisites: %s\n", strings.Join(sp.Prerequisites, "; "))
	}
	b.WriteString("Format the plan as markdown with weekly sections, each " +
		"with concrete activities and a checkpoint.")
	return b.String()
}

// ResearchPrompt asks for background research notes for a space.
func ResearchPrompt(sp model.Space) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a research brief for %q: key concepts, common "+
		"pitfalls, and the best learning resources with a one-line reason each.\n", sp.Title)
	if sp.Description != "" {
		fmt.Fprintf(&b, "Context: %s\n", sp.Description)
	}
	b.WriteString("Format as markdown with sections.")
	return b.String()
}

// MindMapPrompt asks for a mermaid mind map of a space's topic.
func MindMapPrompt(sp model.Space) string {
	return fmt.Sprintf("Produce a mermaid mindmap diagram of the topic %q, "+
		"covering its main branches and two levels of sub-topics. Reply with "+
		"only the mermaid code block.", sp.Title)
}

// BootstrapPrompt asks for a space's initial objectives, prerequisites, and
// to-do list, using the marker convention for the task payload.
func BootstrapPrompt(title, description string, category model.GoalCategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user starts working toward the %s goal %q.\n", category, title)
	if description != "" {
		fmt.Fprintf(&b, "They describe it as: %s\n", description)
	}
	b.WriteString("Reply with a short encouraging overview, then a line " +
		"starting with TASKS: followed by a JSON array of 4-6 " +
		"{\"title\", \"description\"} starter tasks, easiest first.")
	return b.String()
}
