package history

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// SortDirection is the direction of a sort key.
type SortDirection int

const (
	SortAsc SortDirection = iota + 1
	SortDesc
)

func MapSortDirection(s string) SortDirection {
	switch s {
	case "ASC":
		return SortAsc
	case "DESC":
		return SortDesc
	default:
		return 0
	}
}

func (v SortDirection) MarshalJSON() ([]byte, error) {
	return marshalEnum(v.String())
}

func (v SortDirection) String() string {
	switch v {
	case SortAsc:
		return "ASC"
	case SortDesc:
		return "DESC"
	default:
		return ""
	}
}

func (v *SortDirection) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "sort direction", func(s string) bool {
		*v = MapSortDirection(s)
		return *v != 0
	})
}

// Sorting is a committed sort key of a query. Multiple sortings compose into a multi-key sort.
type Sorting struct {
	Property  string        `json:"property"`
	Direction SortDirection `json:"direction"`
}

// Ordering is a pending sort key, which must be committed by calling Asc or Desc.
type Ordering[Q any] struct {
	apply func(SortDirection) Q
}

// Asc commits the pending sort key in ascending order.
func (o Ordering[Q]) Asc() Q {
	return o.apply(SortAsc)
}

// Desc commits the pending sort key in descending order.
func (o Ordering[Q]) Desc() Q {
	return o.apply(SortDesc)
}

func newOrdering[Q any](apply func(SortDirection) Q) Ordering[Q] {
	return Ordering[Q]{apply: apply}
}

// appendSorting never shares the backing array of s, since query values are copied on every call.
func appendSorting(s []Sorting, property string, direction SortDirection) []Sorting {
	return append(slices.Clip(s), Sorting{Property: property, Direction: direction})
}

// validateSorting checks the two-phase ordering of criteria, not created by a typed query.
func validateSorting(sorting []Sorting, properties []string) error {
	for _, s := range sorting {
		if s.Property == "" {
			return usageError("an orderBy method must be called, before specifying a direction")
		}
		if !slices.Contains(properties, s.Property) {
			return usageError(fmt.Sprintf("unsupported sort property %q", s.Property))
		}
		if s.Direction == 0 {
			return usageError(fmt.Sprintf("asc or desc must be called after ordering by %q", s.Property))
		}
	}
	return nil
}

func usageError(detail string) error {
	return Error{
		Type:   ErrorQuery,
		Title:  "invalid query",
		Detail: detail,
	}
}

func validationError(detail string) error {
	return Error{
		Type:   ErrorValidation,
		Title:  "invalid query",
		Detail: detail,
	}
}

// requireValues validates a required set argument of a filter method.
func requireValues(name string, values []string) error {
	if values == nil {
		return usageError(fmt.Sprintf("set of %s is nil", name))
	}
	if len(values) == 0 {
		return usageError(fmt.Sprintf("set of %s is empty", name))
	}
	if slices.Contains(values, "") {
		return usageError(fmt.Sprintf("set of %s contains an empty value", name))
	}
	return nil
}

func requireValueTypes(values []ValueType) error {
	if values == nil {
		return requireValues("variable types", nil)
	}

	names := make([]string, len(values))
	for i := range values {
		names[i] = string(values[i])
	}
	return requireValues("variable types", names)
}

func requireValue(name string, value string) error {
	if value == "" {
		return usageError(fmt.Sprintf("%s is empty", name))
	}
	return nil
}

func requireTime(name string, value time.Time) error {
	if value.IsZero() {
		return usageError(fmt.Sprintf("%s is zero", name))
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func executeList[T any](ctx context.Context, e QueryExecutor, criteria any, options QueryOptions, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}

	results, err := e.Query(ctx, criteria, options)
	if err != nil {
		return nil, err
	}

	entities := make([]T, len(results))
	for i, result := range results {
		entity, ok := result.(T)
		if !ok {
			return nil, Error{
				Type:   ErrorBug,
				Title:  "failed to execute query",
				Detail: fmt.Sprintf("unexpected result type %T", result),
			}
		}
		entities[i] = entity
	}
	return entities, nil
}

func executeListPage[T any](ctx context.Context, e QueryExecutor, criteria any, offset int, size int, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, usageError("offset must be greater than or equal to 0")
	}
	if size < 0 {
		return nil, usageError("size must be greater than or equal to 0")
	}
	if size == 0 {
		return []T{}, nil
	}
	return executeList[T](ctx, e, criteria, QueryOptions{Offset: offset, Limit: size}, nil)
}

func executeCount(ctx context.Context, e QueryExecutor, criteria any, err error) (int, error) {
	if err != nil {
		return -1, err
	}
	return e.Count(ctx, criteria)
}

// executeSingleResult returns nil, if no entity matches.
func executeSingleResult[T any](ctx context.Context, e QueryExecutor, criteria any, err error) (*T, error) {
	entities, err := executeList[T](ctx, e, criteria, QueryOptions{Limit: 2}, err)
	if err != nil {
		return nil, err
	}

	switch len(entities) {
	case 0:
		return nil, nil
	case 1:
		return &entities[0], nil
	default:
		return nil, usageError("query returned more than one result")
	}
}
