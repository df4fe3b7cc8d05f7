package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"agency/internal/docstore"

	"github.com/google/uuid"
)

// Store is an in-process docstore.Store. Documents are kept as decoded JSON
// so reads never alias caller-owned values.
type Store struct {
	mu          sync.Mutex
	seq         int64
	collections map[string][]*document
}

type document struct {
	id   string
	seq  int64
	data map[string]any
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: map[string][]*document{}}
}

// Add stores the document under a new random id.
func (s *Store) Add(_ context.Context, collection string, doc any) (string, error) {
	data, err := toMap(doc)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	d := &document{id: uuid.NewString(), seq: s.seq, data: data}
	s.collections[collection] = append(s.collections[collection], d)
	return d.id, nil
}

// Get returns a single document.
func (s *Store) Get(_ context.Context, collection, id string) (docstore.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.find(collection, id)
	if d == nil {
		return docstore.Snapshot{}, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return snapshot(d)
}

// Query filters and orders a collection.
func (s *Store) Query(_ context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := docstore.ValidateQuery(q); err != nil {
		return nil, err
	}
	where := make([]any, len(q.Where))
	for i, f := range q.Where {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		where[i] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []*document
	for _, d := range s.collections[q.Collection] {
		if matches(d, q.Where, where) {
			docs = append(docs, d)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := compare(docs[i].data[q.OrderBy], docs[j].data[q.OrderBy])
			if q.Direction == docstore.Desc {
				c = -c
			}
			if c == 0 {
				return docs[i].seq < docs[j].seq
			}
			return c < 0
		})
	}

	out := make([]docstore.Snapshot, 0, len(docs))
	for _, d := range docs {
		snap, err := snapshot(d)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Update overwrites the given top-level fields.
func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields))
	for k, v := range fields {
		if err := docstore.ValidateField(k); err != nil {
			return err
		}
		nv, err := normalizeValue(v)
		if err != nil {
			return err
		}
		patch[k] = nv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.find(collection, id)
	if d == nil {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	for k, v := range patch {
		d.data[k] = v
	}
	return nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func (s *Store) find(collection, id string) *document {
	for _, d := range s.collections[collection] {
		if d.id == id {
			return d
		}
	}
	return nil
}

func snapshot(d *document) (docstore.Snapshot, error) {
	raw, err := json.Marshal(d.data)
	if err != nil {
		return docstore.Snapshot{}, fmt.Errorf("encode document %s: %w", d.id, err)
	}
	return docstore.Snapshot{ID: d.id, Data: raw}, nil
}

func toMap(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	return m, nil
}

// normalizeValue round-trips v through JSON so stored values have the same
// shape as freshly added documents.
func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode field value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(d *document, filters []docstore.Filter, values []any) bool {
	for i, f := range filters {
		if compare(d.data[f.Field], values[i]) != 0 {
			return false
		}
	}
	return true
}

// compare orders JSON values: null first, then booleans, numbers, strings and
// timestamp objects. Values of different types order by that rank.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		return compareFloat(av, b.(float64))
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case map[string]any:
		bv := b.(map[string]any)
		if c := compareFloat(number(av["seconds"]), number(bv["seconds"])); c != 0 {
			return c
		}
		return compareFloat(number(av["nanos"]), number(bv["nanos"]))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case map[string]any:
		return 4
	default:
		return 5
	}
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
