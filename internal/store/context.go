package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

// ChatContextParams holds parameters for prompt context assembly.
type ChatContextParams struct {
	SpaceID string
	Query   string
	Budget  int // max chars in output (rough token proxy: 1 token ≈ 4 chars)
}

// ContextBlock is one scored content excerpt for prompt grounding.
type ContextBlock struct {
	Source  string  `json:"source"` // "module", "plan", "research"
	Title   string  `json:"title,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Excerpt bool    `json:"excerpt,omitempty"`
}

// ChatContextResult is the assembled grounding context for a chat turn.
type ChatContextResult struct {
	Budget int            `json:"budget"`
	Used   int            `json:"used"`
	Blocks []ContextBlock `json:"blocks"`
}

// ChatContext assembles the space content most relevant to a chat query
// within a token budget, so the mentor prompt can cite the user's own
// modules and notes.
func (s *SQLiteStore) ChatContext(ctx context.Context, p ChatContextParams) (*ChatContextResult, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = 2000
	}
	charBudget := budget * 4

	sp, err := s.GetSpace(ctx, p.SpaceID)
	if err != nil {
		return nil, err
	}
	modules, err := s.ListModules(ctx, p.SpaceID)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		block ContextBlock
		score float64
	}
	var candidates []candidate

	now := time.Now()
	queryTerms := termSet(p.Query)

	for _, m := range modules {
		if m.Content == "" {
			continue
		}
		relevance := overlapScore(queryTerms, m.Title+" "+m.Content)

		// Recency: exponential decay, half-life around a week
		age := now.Sub(m.UpdatedAt).Hours() / 24.0
		recency := math.Exp(-0.1 * age)

		// Incomplete modules are what the user is working on now
		position := 1.0
		if m.Completed {
			position = 0.5
		}

		score := relevance*0.5 + recency*0.2 + position*0.3
		candidates = append(candidates, candidate{
			block: ContextBlock{Source: "module", Title: m.Title, Content: m.Content},
			score: score,
		})
	}

	if sp.Plan != "" {
		candidates = append(candidates, candidate{
			block: ContextBlock{Source: "plan", Content: sp.Plan},
			score: 0.3 + overlapScore(queryTerms, sp.Plan)*0.5,
		})
	}
	if sp.Research != "" {
		candidates = append(candidates, candidate{
			block: ContextBlock{Source: "research", Content: sp.Research},
			score: 0.3 + overlapScore(queryTerms, sp.Research)*0.5,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Greedy packing into budget
	result := &ChatContextResult{Budget: budget, Blocks: []ContextBlock{}}
	used := 0

	for _, c := range candidates {
		contentLen := len(c.block.Content)
		b := c.block
		b.Score = math.Round(c.score*100) / 100
		if used+contentLen <= charBudget {
			result.Blocks = append(result.Blocks, b)
			used += contentLen
		} else if remaining := charBudget - used; remaining >= 100 {
			b.Content = b.Content[:remaining] + "..."
			b.Excerpt = true
			result.Blocks = append(result.Blocks, b)
			used += len(b.Content)
			break
		} else {
			break
		}
	}

	result.Used = used / 4
	return result, nil
}

func termSet(query string) map[string]bool {
	terms := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 3 {
			terms[w] = true
		}
	}
	return terms
}

// overlapScore is the fraction of query terms present in the text.
func overlapScore(terms map[string]bool, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
