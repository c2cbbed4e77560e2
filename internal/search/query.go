package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query  string
	Limit  int
	Offset int
}

// DefaultLimit bounds a search when Params.Limit is not set.
const DefaultLimit = 20

// Result holds matching note ids, best match first.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is one matching note.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search finds notes owned by ownerID matching params.Query. An empty query
// lists the owner's notes newest first. A blank ownerID matches nothing.
func (s *SearchIndex) Search(ctx context.Context, ownerID string, params Params) (*Result, error) {
	result := &Result{Query: params.Query, Hits: []Hit{}}
	if ownerID == "" {
		return result, nil
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(ownerID, params.Query), params.Limit, params.Offset, false)
	if strings.TrimSpace(params.Query) == "" {
		req.SortBy([]string{"-created_at"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("content")
	}
	req.Fields = []string{"title", "owner_id"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	for _, hit := range res.Hits {
		// The owner filter is part of the query; this guards the invariant
		// against a mapping mistake.
		if owner, _ := hit.Fields["owner_id"].(string); owner != ownerID {
			continue
		}

		h := Hit{ID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}

// buildSearchQuery ANDs the owner filter with a text query over title and content.
func buildSearchQuery(ownerID, text string) query.Query {
	owner := bleve.NewTermQuery(ownerID)
	owner.SetField("owner_id")

	text = strings.TrimSpace(text)
	if text == "" {
		return owner
	}

	titleMatch := bleve.NewMatchQuery(text)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	contentMatch := bleve.NewMatchQuery(text)
	contentMatch.SetField("content")

	// Typo tolerance on titles.
	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	textQueries := []query.Query{titleMatch, contentMatch, fuzzy}

	// Prefix for search-as-you-type on titles.
	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		textQueries = append(textQueries, prefix)
	}

	return bleve.NewConjunctionQuery(owner, bleve.NewDisjunctionQuery(textQueries...))
}
