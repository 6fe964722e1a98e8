// Package docstore defines the document store contract used by the GreenPoints service.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// IDField is the key under which stores expose a document identifier.
const IDField = "_id"

// ErrUnsupportedPipeline is returned when a store cannot execute a pipeline shape.
var ErrUnsupportedPipeline = errors.New("unsupported aggregation pipeline")

// Document is a schemaless record. Field names are snake_case.
type Document map[string]any

// Filter matches documents whose top-level fields equal the given values.
type Filter map[string]any

// Store is the persistence contract required by the domain layer.
type Store interface {
	InsertOne(ctx context.Context, collection string, doc Document) (string, error)
	// FindMany returns matching documents in insertion order. A limit <= 0 means no limit.
	FindMany(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	Aggregate(ctx context.Context, collection string, pipeline Pipeline) ([]Document, error)
}

// Inspector is implemented by stores able to report connectivity for diagnostics.
type Inspector interface {
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)
}

// Pipeline is an ordered list of aggregation stages.
type Pipeline []Stage

// Stage is one step of an aggregation pipeline.
type Stage interface {
	stage()
}

// Match keeps documents matching the filter.
type Match struct {
	Filter Filter
}

// Group buckets documents by a field. The bucket value is emitted under IDField.
type Group struct {
	By           string
	Accumulators []Accumulator
}

// Accumulator sums Field into As. An empty Field counts documents.
type Accumulator struct {
	As    string
	Field string
}

// Sum builds an accumulator summing a numeric field.
func Sum(as, field string) Accumulator {
	return Accumulator{As: as, Field: field}
}

// Count builds an accumulator counting documents.
func Count(as string) Accumulator {
	return Accumulator{As: as}
}

// Sort orders rows by a single field.
type Sort struct {
	Field      string
	Descending bool
}

// Limit truncates the row set.
type Limit struct {
	N int
}

func (Match) stage() {}
func (Group) stage() {}
func (Sort) stage()  {}
func (Limit) stage() {}

// Decode converts a document into a typed value using its JSON representation.
func Decode(doc Document, target any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Int64 reads a numeric field regardless of the concrete type the store produced.
func (d Document) Int64(field string) int64 {
	switch v := d[field].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// String reads a string field, returning "" when absent.
func (d Document) String(field string) string {
	if v, ok := d[field].(string); ok {
		return v
	}
	return ""
}
