// Package docstore defines the document store the record gateway writes to.
//
// A store holds named collections of schemaless JSON documents. It assigns
// document ids on Add, answers ordered queries and applies top-level field
// patches. Implementations live in docstore/memory and internal/storage.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidField = errors.New("invalid field name")
)

// Ports for document store adapters.
type (
	// Writer appends documents and patches existing ones.
	Writer interface {
		// Add stores doc (any value marshalling to a JSON object) and returns the generated id.
		Add(ctx context.Context, collection string, doc any) (id string, err error)
		// Update overwrites the given top-level fields of an existing document.
		Update(ctx context.Context, collection, id string, fields map[string]any) error
	}

	// Reader fetches documents.
	Reader interface {
		Get(ctx context.Context, collection, id string) (Snapshot, error)
		Query(ctx context.Context, q Query) ([]Snapshot, error)
	}

	Store interface {
		Writer
		Reader
	}
)

// Direction orders query results.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Filter matches documents whose top-level Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Query selects documents of one collection. Ties on OrderBy keep insertion order.
type Query struct {
	Collection string
	OrderBy    string
	Direction  Direction
	Where      []Filter
}

// Snapshot is a stored document as read back from the store.
type Snapshot struct {
	ID   string
	Data json.RawMessage
}

// DataTo decodes the document body into v.
func (s Snapshot) DataTo(v any) error {
	if len(s.Data) == 0 {
		return fmt.Errorf("document %s: empty body", s.ID)
	}
	return json.Unmarshal(s.Data, v)
}

// Timestamp is the canonical at-rest representation of every temporal field.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// FromTime converts t to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// Before reports whether ts is earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanos < other.Nanos
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateField rejects names that cannot be used as a top-level document field.
func ValidateField(name string) error {
	if !fieldName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

// ValidateQuery checks the collection and every field referenced by q.
func ValidateQuery(q Query) error {
	if q.Collection == "" {
		return errors.New("query without collection")
	}
	if q.OrderBy != "" {
		if err := ValidateField(q.OrderBy); err != nil {
			return err
		}
	}
	for _, f := range q.Where {
		if err := ValidateField(f.Field); err != nil {
			return err
		}
	}
	return nil
}
