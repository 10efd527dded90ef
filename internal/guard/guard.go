// Package guard enforces the rule that a record referenced by others cannot
// be deleted. The check always reads the current dependents, so a delete
// confirmed against a stale page is still refused.
package guard

import (
	"context"
	"fmt"

	"github.com/gedex/inflector"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/parallel"
)

// BlockedError is returned by Delete when dependents still reference the record.
type BlockedError struct {
	Kind       string // singular name of the dependent records, e.g. "book"
	Dependents int
}

func (e *BlockedError) Error() string {
	kind := e.Kind
	if e.Dependents != 1 {
		kind = inflector.Pluralize(kind)
	}
	return fmt.Sprintf("delete blocked by %d %s", e.Dependents, kind)
}

// Policy describes how to load a record of type T, find the records of type D
// that reference it, and remove it.
type Policy[T, D any] struct {
	Kind       string
	Load       func(ctx context.Context, id primitive.ObjectID) (T, error)
	Dependents func(ctx context.Context, id primitive.ObjectID) ([]D, error)
	Remove     func(ctx context.Context, id primitive.ObjectID) error
}

// Check is a record together with everything that references it.
type Check[T, D any] struct {
	Record     T
	Dependents []D
}

// Blocked reports whether the record may not be deleted.
func (c Check[T, D]) Blocked() bool {
	return len(c.Dependents) > 0
}

// Inspect loads the record and its dependents concurrently. A policy without
// a Dependents func never blocks.
func (p Policy[T, D]) Inspect(ctx context.Context, id primitive.ObjectID) (Check[T, D], error) {
	tasks := parallel.Tasks{
		"record": func(ctx context.Context) (any, error) { return p.Load(ctx, id) },
	}
	if p.Dependents != nil {
		tasks["dependents"] = func(ctx context.Context) (any, error) { return p.Dependents(ctx, id) }
	}

	results, err := parallel.Run(ctx, tasks)
	if err != nil {
		return Check[T, D]{}, err
	}

	check := Check[T, D]{
		Record:     parallel.Value[T](results, "record"),
		Dependents: []D{},
	}
	if p.Dependents != nil {
		if deps := parallel.Value[[]D](results, "dependents"); deps != nil {
			check.Dependents = deps
		}
	}
	return check, nil
}

// Delete re-inspects the record and removes it only when nothing references
// it. When blocked, the returned Check lists the dependents alongside a
// *BlockedError.
func (p Policy[T, D]) Delete(ctx context.Context, id primitive.ObjectID) (Check[T, D], error) {
	check, err := p.Inspect(ctx, id)
	if err != nil {
		return check, err
	}
	if check.Blocked() {
		return check, &BlockedError{Kind: p.Kind, Dependents: len(check.Dependents)}
	}
	if err := p.Remove(ctx, id); err != nil {
		return check, err
	}
	return check, nil
}
