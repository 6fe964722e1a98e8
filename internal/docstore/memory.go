package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

// InsertOne implements Store.
func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	stored := clone(doc)
	stored[IDField] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], stored)
	return id, nil
}

// FindMany implements Store.
func (s *MemoryStore) FindMany(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if !matches(doc, filter) {
			continue
		}
		results = append(results, clone(doc))
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// Aggregate implements Store by evaluating each stage in order.
func (s *MemoryStore) Aggregate(ctx context.Context, collection string, pipeline Pipeline) ([]Document, error) {
	rows, err := s.FindMany(ctx, collection, nil, 0)
	if err != nil {
		return nil, err
	}

	for _, st := range pipeline {
		switch stage := st.(type) {
		case Match:
			rows = filterRows(rows, stage.Filter)
		case Group:
			rows = groupRows(rows, stage)
		case Sort:
			sortRows(rows, stage)
		case Limit:
			if stage.N >= 0 && len(rows) > stage.N {
				rows = rows[:stage.N]
			}
		default:
			return nil, fmt.Errorf("%w: stage %T", ErrUnsupportedPipeline, st)
		}
	}
	return rows, nil
}

// Ping implements Inspector.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Collections implements Inspector.
func (s *MemoryStore) Collections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func filterRows(rows []Document, filter Filter) []Document {
	out := rows[:0:0]
	for _, row := range rows {
		if matches(row, filter) {
			out = append(out, row)
		}
	}
	return out
}

func groupRows(rows []Document, group Group) []Document {
	buckets := make(map[any]Document)
	order := make([]any, 0)
	for _, row := range rows {
		key := row[group.By]
		bucket, ok := buckets[key]
		if !ok {
			bucket = Document{IDField: key}
			for _, acc := range group.Accumulators {
				bucket[acc.As] = int64(0)
			}
			buckets[key] = bucket
			order = append(order, key)
		}
		for _, acc := range group.Accumulators {
			if acc.Field == "" {
				bucket[acc.As] = bucket[acc.As].(int64) + 1
				continue
			}
			bucket[acc.As] = bucket[acc.As].(int64) + row.Int64(acc.Field)
		}
	}

	out := make([]Document, 0, len(order))
	for _, key := range order {
		out = append(out, buckets[key])
	}
	return out
}

func sortRows(rows []Document, by Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		less := compare(rows[i][by.Field], rows[j][by.Field])
		if by.Descending {
			return less > 0
		}
		return less < 0
	})
}

func compare(a, b any) int {
	if as, ok := a.(string); ok {
		bs, _ := b.(string)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	}
	ai := Document{"v": a}.Int64("v")
	bi := Document{"v": b}.Int64("v")
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return 0
}

func matches(doc Document, filter Filter) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc Document) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
