// Ranks titles across the searchable collections against a free-text query.

package listing

import (
	"context"
	"slices"
	"strings"

	"github.com/sarkari/portal/internal/record"
)

// MaxSearchResults caps the hits returned by Search.
const MaxSearchResults = 10

var searchKinds = []record.Kind{record.Job, record.AdmitCard, record.Result, record.AnswerKey, record.Yojana}

// Search returns the records whose title contains the whole query or every
// query word, best match first and newest first on ties. A blank query
// yields no hits.
func (s *Service) Search(ctx context.Context, query string) ([]Item, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Item{}, nil
	}
	words := strings.Fields(q)
	doc, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	type hit struct {
		item  Item
		score int
	}
	var hits []hit
	for _, k := range searchKinds {
		for _, r := range doc.Rows(k) {
			if score := Score(r.Title(), q, words); score > 0 {
				hits = append(hits, hit{Item{Kind: k, Record: r}, score})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return record.SortKey(b.item.Record).Compare(record.SortKey(a.item.Record))
	})
	out := make([]Item, 0, min(len(hits), MaxSearchResults))
	for _, h := range hits[:min(len(hits), MaxSearchResults)] {
		out = append(out, h.item)
	}
	return out, nil
}

// Score rates title against the lowercased query q and its words: 100 for
// the whole phrase, 50 when every word is present and 10 per present word.
// Titles matching neither the phrase nor every word score 0.
func Score(title, q string, words []string) int {
	t := strings.ToLower(title)
	phrase := strings.Contains(t, q)
	score, present := 0, 0
	for _, w := range words {
		if strings.Contains(t, w) {
			present++
		}
	}
	all := present == len(words)
	if !phrase && !all {
		return 0
	}
	if phrase {
		score += 100
	}
	if all {
		score += 50
	}
	return score + 10*present
}
