package research

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
)

// Searcher runs case search with the fallback policy: live results when the
// client succeeds (empty included), the ranked mock corpus when live is
// disabled or every attempt fails. Research degrades, it does not halt a
// matter.
type Searcher struct {
	Client     *Client
	Live       bool
	MaxResults int
}

// Search returns ranked results and whether the mock fallback was used in
// place of an enabled live source.
func (s *Searcher) Search(ctx context.Context, q Query) ([]CaseResult, bool, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, false, fmt.Errorf("query text is required")
	}
	if q.MaxResults <= 0 {
		q.MaxResults = s.MaxResults
	}

	if !s.Live || s.Client == nil {
		return MockResults(q), false, nil
	}

	results, err := s.Client.Search(ctx, q)
	if err != nil {
		log.Printf("research: live search failed, serving mock corpus: %v", err)
		return MockResults(q), true, nil
	}
	// A live answer with zero hits is still a live answer. "No authority
	// found" must not be dressed up as corpus results.
	return Rank(q, results), false, nil
}

// Rank scores results against the query and returns them best first,
// truncated to q.MaxResults when set. Ties break by year descending, then
// binding before persuasive.
func Rank(q Query, results []CaseResult) []CaseResult {
	terms := queryTerms(q.Text)
	out := make([]CaseResult, 0, len(results))
	for _, r := range results {
		if q.YearFrom > 0 && r.Year < q.YearFrom {
			continue
		}
		r.Relevance = score(terms, r)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Binding && !out[j].Binding
	})
	if q.MaxResults > 0 && len(out) > q.MaxResults {
		out = out[:q.MaxResults]
	}
	return out
}

func score(terms []string, r CaseResult) float64 {
	haystack := strings.ToLower(r.Title + " " + r.HeadnoteMS + " " + r.HeadnoteEN)
	matched := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			matched++
		}
	}
	overlap := 0.0
	if len(terms) > 0 {
		overlap = float64(matched) / float64(len(terms))
	}

	recency := float64(r.Year-1990) / 40.0
	recency = math.Max(0, math.Min(1, recency))

	binding := 0.0
	if r.Binding {
		binding = 1.0
	}

	s := 0.6*overlap + 0.25*recency + 0.15*binding
	return math.Round(s*100) / 100
}

func queryTerms(text string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, ".,;:()[]\"'")
		if len(f) < 3 {
			continue
		}
		out = append(out, f)
	}
	return out
}
