// Package store persists chart documents for the HTTP service.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process map, for tests and single-instance servers
//   - [FileStore]: one JSON file per chart, for local use
//   - [MongoStore]: a MongoDB collection, for multi-instance deployments
//
// All backends keep their own encoded copy of a chart, so callers can mutate
// what they pass to Put or receive from Get without affecting stored state.
//
//	s := store.NewMemoryStore()
//	doc, err := s.Put(ctx, &store.Document{Chart: c})
//	...
//	doc, err = s.Get(ctx, doc.ID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown id
//	}
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
)

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New(errors.ErrCodeChartNotFound, "chart not found")

// Document is a stored chart with its bookkeeping fields.
type Document struct {
	ID        string       `json:"id"`
	Chart     *chart.Chart `json:"chart"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Summary describes a stored chart without its body.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title,omitempty" bson:"title"`
	Lanes     int       `json:"lanes" bson:"lanes"`
	Links     int       `json:"links" bson:"links"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for chart storage backends.
type Store interface {
	// Get returns the chart with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Put creates or replaces a chart. An empty ID gets a fresh UUID.
	// CreatedAt survives replacement; UpdatedAt is always refreshed.
	// The returned document reflects the stored state.
	Put(ctx context.Context, doc *Document) (*Document, error)

	// Delete removes a chart, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns summaries ordered by creation time, oldest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewID returns a fresh chart id.
func NewID() string { return uuid.NewString() }

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// prepare validates doc and fills its id. The chart's own ID is kept in
// sync with the document id.
func prepare(doc *Document) (string, error) {
	if doc == nil || doc.Chart == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "document has no chart")
	}
	id := doc.ID
	if id == "" {
		id = doc.Chart.ID
	}
	if id == "" {
		id = NewID()
	}
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

func encode(id string, c *chart.Chart) ([]byte, error) {
	cp := *c
	cp.ID = id
	data, err := json.Marshal(&cp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "encode chart %s", id)
	}
	return data, nil
}

func decode(id string, data []byte) (*chart.Chart, error) {
	var c chart.Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode chart %s", id)
	}
	return &c, nil
}

func summarize(id string, c *chart.Chart, created, updated time.Time) Summary {
	return Summary{
		ID:        id,
		Title:     c.Title,
		Lanes:     len(c.Swimlanes),
		Links:     len(c.Links),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }
