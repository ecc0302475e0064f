package taskindex

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Scores below the threshold never make it into a search report; an
// entry whose name appears verbatim in the query gets the exact-name
// boost on top of its token score.
const (
	searchThreshold = 0.3
	exactNameBoost  = 0.3
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Result is one scored search hit.
type Result struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// SearchReport is the JSON document a search prints.
type SearchReport struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Search scores every entry against the query and returns the top
// matches, best first, ties broken by name. A limit of 0 or less keeps
// every match above the threshold.
func (ix *Index) Search(query string, limit int) (*SearchReport, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, errors.New("query must not be empty")
	}
	queryTokens := tokenSet(trimmed)
	if len(queryTokens) == 0 {
		return nil, errors.New("query must contain letters or digits")
	}
	loweredQuery := strings.ToLower(trimmed)

	results := []Result{}
	for name, entry := range ix.Tasks {
		score := scoreEntry(name, entry, queryTokens)
		if strings.Contains(loweredQuery, name) {
			score = math.Min(1.0, score+exactNameBoost)
		}
		score = math.Round(score*1000) / 1000
		if score >= searchThreshold {
			results = append(results, Result{Name: name, Score: score, Summary: entry.Summary})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return &SearchReport{Query: trimmed, Results: results}, nil
}

// scoreEntry is the fraction of distinct query tokens that occur in
// the entry's name, summary, requirements, or scope.
func scoreEntry(name string, entry *Entry, queryTokens map[string]struct{}) float64 {
	entryTokens := tokenSet(name, entry.Summary)
	for _, line := range entry.Requirements {
		addTokens(entryTokens, line)
	}
	for _, line := range entry.Scope {
		addTokens(entryTokens, line)
	}

	matched := 0
	for token := range queryTokens {
		if _, ok := entryTokens[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// tokenSet collects the distinct lowercase alphanumeric runs of the
// given texts.
func tokenSet(texts ...string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, text := range texts {
		addTokens(set, text)
	}
	return set
}

func addTokens(set map[string]struct{}, text string) {
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		set[token] = struct{}{}
	}
}
