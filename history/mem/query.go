package mem

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/history/internal"
	"github.com/jackc/pgx/v5/pgtype"
)

// comparator compares two entities by a single sort property.
type comparator[E any] func(a *E, b *E) int

// sortAndPage sorts entities by the given sortings and applies the query options.
// The sequence counter is always used as last sort key, so that rows with equal timestamps keep their record order.
func sortAndPage[E any](entities []*E, sorting []history.Sorting, comparators map[string]comparator[E], sequenceCounter func(*E) int64, o history.QueryOptions) []*E {
	slices.SortStableFunc(entities, func(a *E, b *E) int {
		for _, s := range sorting {
			compare, ok := comparators[s.Property]
			if !ok {
				continue
			}

			c := compare(a, b)
			if s.Direction == history.SortDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compareInt64(sequenceCounter(a), sequenceCounter(b))
	})

	return internal.Page(entities, o)
}

func compareInt64(a int64, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareInt8 sorts null values last, when sorted ascending.
func compareInt8(a pgtype.Int8, b pgtype.Int8) int {
	if c, ok := compareNull(a.Valid, b.Valid); ok {
		return c
	}
	return compareInt64(a.Int64, b.Int64)
}

func compareText(a pgtype.Text, b pgtype.Text) int {
	if c, ok := compareNull(a.Valid, b.Valid); ok {
		return c
	}
	return strings.Compare(a.String, b.String)
}

func compareTime(a time.Time, b time.Time) int {
	return a.Compare(b)
}

func compareTimestamp(a pgtype.Timestamp, b pgtype.Timestamp) int {
	if c, ok := compareNull(a.Valid, b.Valid); ok {
		return c
	}
	return a.Time.Compare(b.Time)
}

func compareNull(aValid bool, bValid bool) (int, bool) {
	switch {
	case aValid && bValid:
		return 0, false
	case !aValid && !bValid:
		return 0, true
	case !aValid:
		return 1, true
	default:
		return -1, true
	}
}

// like matches a string against a pattern, using % as wildcard for any sequence and _ for a single character.
// A wildcard can be escaped with a backslash.
func like(pattern string, s string) bool {
	var b strings.Builder
	b.WriteString("^")

	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")

	re, err := regexp.Compile("(?s)" + b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func matchLike(pattern string, v pgtype.Text) bool {
	if pattern == "" {
		return true
	}
	return v.Valid && like(pattern, v.String)
}

func matchString(filter string, v string) bool {
	return filter == "" || filter == v
}

func matchText(filter string, v pgtype.Text) bool {
	return filter == "" || (v.Valid && v.String == filter)
}

func matchIn(values []string, v string) bool {
	return len(values) == 0 || slices.Contains(values, v)
}

func matchTextIn(values []string, v pgtype.Text) bool {
	return len(values) == 0 || (v.Valid && slices.Contains(values, v.String))
}

func matchTime(t time.Time, after *time.Time, before *time.Time) bool {
	return internal.InWindow(pgtype.Timestamp{Time: t, Valid: true}, after, before)
}

func matchValueTypeIn(values []history.ValueType, v history.ValueType) bool {
	return len(values) == 0 || slices.Contains(values, v)
}
