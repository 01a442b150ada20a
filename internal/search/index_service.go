// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
)

// IDField is the mandatory unique key of every document.
const IDField = "id"

const defaultRows = 10

var (
	// ErrMissingID is returned for documents without a usable id.
	ErrMissingID = errors.New("document has no id")

	// ErrBadQuery wraps query parse failures.
	ErrBadQuery = errors.New("invalid query")
)

// Document is a flat field map. IDField must hold a string or a number.
type Document map[string]any

// ID returns the document key.
func (d Document) ID() (string, error) {
	switch v := d[IDField].(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return "", ErrMissingID
}

// IndexReport summarizes a batch write.
type IndexReport struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
}

// Query selects documents from one core.
type Query struct {
	// Text is a query string. Empty or *:* matches everything.
	Text string

	// Filters are field:value restrictions that must all match.
	Filters []string

	Start  int
	Rows   int
	Fields []string
}

// SearchResult is one page of hits.
type SearchResult struct {
	NumFound uint64        `json:"numFound"`
	Start    int           `json:"start"`
	MaxScore float64       `json:"maxScore"`
	Docs     []Document    `json:"docs"`
	Took     time.Duration `json:"-"`
}

// IndexService writes to and reads from the cores of a container.
type IndexService struct {
	container *CoreContainer
}

// NewIndexService returns a service bound to container.
func NewIndexService(container *CoreContainer) *IndexService {
	return &IndexService{container: container}
}

func (s *IndexService) index(name string) (*Core, bleve.Index, error) {
	core, err := s.container.Core(name)
	if err != nil {
		return nil, nil, err
	}
	idx, err := core.Index()
	if err != nil {
		return nil, nil, err
	}
	return core, idx, nil
}

// AddToIndex indexes a single document. Unlike AddListToIndex, which skips
// and counts a document without an id, a lone invalid document is reported
// as ErrMissingID and the core is left untouched.
func (s *IndexService) AddToIndex(ctx context.Context, coreName string, doc Document) error {
	id, err := doc.ID()
	if err != nil {
		metrics.RecordIndexed(coreName, 0, 1)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	core, idx, err := s.index(coreName)
	if err != nil {
		return err
	}
	if err := idx.Index(id, map[string]any(doc)); err != nil {
		return fmt.Errorf("index document %s in %s: %w", id, coreName, err)
	}
	core.bump()
	metrics.RecordIndexed(coreName, 1, 0)
	return nil
}

// AddListToIndex indexes docs in one batch. Documents without an id are
// skipped and counted; they do not fail the call.
func (s *IndexService) AddListToIndex(ctx context.Context, coreName string, docs []Document) (IndexReport, error) {
	return s.Apply(ctx, coreName, docs, nil)
}

// Apply writes docs and deletes ids in one batch.
func (s *IndexService) Apply(ctx context.Context, coreName string, docs []Document, deleteIDs []string) (IndexReport, error) {
	var report IndexReport

	core, idx, err := s.index(coreName)
	if err != nil {
		return report, err
	}

	batch := idx.NewBatch()
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return IndexReport{}, err
		}
		id, err := doc.ID()
		if err != nil {
			report.Skipped++
			logging.Ctx(ctx).Debug().
				Str("core", coreName).
				Int("position", i).
				Msg("Skipping document without id")
			continue
		}
		if err := batch.Index(id, map[string]any(doc)); err != nil {
			report.Skipped++
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("core", coreName).
				Str("id", id).
				Msg("Skipping unindexable document")
			continue
		}
		report.Indexed++
	}
	for _, id := range deleteIDs {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		batch.Delete(id)
		report.Deleted++
	}

	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return IndexReport{}, fmt.Errorf("apply batch to %s: %w", coreName, err)
		}
		core.bump()
	}

	metrics.RecordIndexed(coreName, report.Indexed, report.Skipped)
	return report, nil
}

// Search runs q against the named core.
func (s *IndexService) Search(ctx context.Context, coreName string, q Query) (*SearchResult, error) {
	res, err := s.search(ctx, coreName, q)
	metrics.RecordSearch(coreName, err)
	return res, err
}

func (s *IndexService) search(ctx context.Context, coreName string, q Query) (*SearchResult, error) {
	_, idx, err := s.index(coreName)
	if err != nil {
		return nil, err
	}

	bq, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	rows := q.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	if maxRows := s.container.node.MaxRows; maxRows > 0 && rows > maxRows {
		rows = maxRows
	}
	start := q.Start
	if start < 0 {
		start = 0
	}

	req := bleve.NewSearchRequestOptions(bq, rows, start, false)
	req.Fields = q.Fields
	if len(req.Fields) == 0 {
		req.Fields = []string{"*"}
	}
	req.SortBy([]string{"-_score", "_id"})

	sr, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", coreName, err)
	}

	out := &SearchResult{
		NumFound: sr.Total,
		Start:    start,
		MaxScore: sr.MaxScore,
		Docs:     make([]Document, 0, len(sr.Hits)),
		Took:     sr.Took,
	}
	for _, hit := range sr.Hits {
		doc := make(Document, len(hit.Fields)+1)
		for k, v := range hit.Fields {
			doc[k] = v
		}
		doc[IDField] = hit.ID
		out.Docs = append(out.Docs, doc)
	}
	return out, nil
}

// buildQuery turns q into a bleve query. Filters are conjunctive match
// queries on a single field.
func buildQuery(q Query) (query.Query, error) {
	var main query.Query
	text := strings.TrimSpace(q.Text)
	if text == "" || text == "*:*" || text == "*" {
		main = bleve.NewMatchAllQuery()
	} else {
		qs := bleve.NewQueryStringQuery(text)
		if _, err := qs.Parse(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
		}
		main = qs
	}

	if len(q.Filters) == 0 {
		return main, nil
	}

	clauses := []query.Query{main}
	filters := append([]string(nil), q.Filters...)
	sort.Strings(filters)
	for _, f := range filters {
		field, value, ok := strings.Cut(f, ":")
		if !ok || field == "" || value == "" {
			return nil, fmt.Errorf("%w: filter %q is not field:value", ErrBadQuery, f)
		}
		if value == "*" {
			continue
		}
		mq := bleve.NewMatchPhraseQuery(strings.Trim(value, `"`))
		mq.SetField(field)
		clauses = append(clauses, mq)
	}
	return bleve.NewConjunctionQuery(clauses...), nil
}
