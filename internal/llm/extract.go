package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/goalspace/goalspace/internal/model"
)

// Document is a structured section extracted from a generation response.
type Document struct {
	Content string `json:"content"`
}

// Extracted is the result of splitting a raw generation response on the
// DOCUMENT:/TASKS: marker convention.
type Extracted struct {
	// Message is the response with both marker sections stripped.
	Message  string
	Document *Document
	Tasks    []model.Task
}

const (
	documentMarker = "DOCUMENT:"
	tasksMarker    = "TASKS:"
)

// ExtractSections splits a raw response into the visible message, an
// optional document section, and an optional task list. Each section runs
// from its marker to the next marker or end of text. A malformed tasks
// payload degrades to no tasks; it never fails the response.
func ExtractSections(raw string) Extracted {
	out := Extracted{Message: strings.TrimSpace(raw)}

	docIdx := strings.Index(raw, documentMarker)
	tasksIdx := strings.Index(raw, tasksMarker)

	if docIdx < 0 && tasksIdx < 0 {
		return out
	}

	// The visible message is everything before the first marker
	first := len(raw)
	if docIdx >= 0 && docIdx < first {
		first = docIdx
	}
	if tasksIdx >= 0 && tasksIdx < first {
		first = tasksIdx
	}
	out.Message = strings.TrimSpace(raw[:first])

	if docIdx >= 0 {
		end := len(raw)
		if tasksIdx > docIdx {
			end = tasksIdx
		}
		content := strings.TrimSpace(raw[docIdx+len(documentMarker) : end])
		if content != "" {
			out.Document = &Document{Content: content}
		}
	}

	if tasksIdx >= 0 {
		end := len(raw)
		if docIdx > tasksIdx {
			end = docIdx
		}
		out.Tasks = parseTasks(raw[tasksIdx+len(tasksMarker) : end])
	}

	return out
}

// parseTasks accepts either a bare JSON array of tasks or an object with a
// "tasks" field, optionally wrapped in a code fence. Parse failure yields
// nil.
func parseTasks(section string) []model.Task {
	section = stripFence(strings.TrimSpace(section))
	if section == "" {
		return nil
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(section), &tasks); err == nil {
		return tasks
	}

	var wrapped struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(section), &wrapped); err == nil && wrapped.Tasks != nil {
		return wrapped.Tasks
	}
	return nil
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripFence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

var mermaidRe = regexp.MustCompile("(?s)```mermaid\\s*(.*?)\\s*```")

// ExtractMermaid returns the first mermaid fenced block in a response, or
// the trimmed response itself when it already looks like a bare diagram.
func ExtractMermaid(raw string) string {
	if m := mermaidRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(raw)
	for _, prefix := range []string{"mindmap", "graph ", "flowchart "} {
		if strings.HasPrefix(trimmed, prefix) {
			return trimmed
		}
	}
	return ""
}
