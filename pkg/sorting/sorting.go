// Package sorting orders wallet records by a selected column.
package sorting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tonunlock/pkg/models"
)

// Field identifies a sortable wallet column.
type Field int

const (
	FieldRank Field = iota
	FieldAddress
	FieldTotalAmount
	FieldUnlockedAmount
	FieldLockedAmount
	FieldStartDate
	FieldEndDate
)

// Fields lists the sortable columns in table order.
var Fields = []Field{
	FieldRank,
	FieldAddress,
	FieldTotalAmount,
	FieldUnlockedAmount,
	FieldLockedAmount,
	FieldStartDate,
	FieldEndDate,
}

var fieldNames = map[Field]string{
	FieldRank:           "rank",
	FieldAddress:        "address",
	FieldTotalAmount:    "total_amount",
	FieldUnlockedAmount: "unlocked_amount",
	FieldLockedAmount:   "locked_amount",
	FieldStartDate:      "start_date",
	FieldEndDate:        "end_date",
}

// String returns the record's JSON field name.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a JSON field name to a Field.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown sort field %q", name)
}

// Direction is the sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" or "desc"; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q", s)
}

// State is the active sort column and direction.
type State struct {
	Field     Field
	Direction Direction
}

// DefaultState sorts by rank, ascending.
func DefaultState() State {
	return State{Field: FieldRank, Direction: Ascending}
}

// Toggle returns the state after selecting f: the same field flips the
// direction, a different field starts ascending.
func (s State) Toggle(f Field) State {
	if s.Field == f {
		if s.Direction == Ascending {
			return State{Field: f, Direction: Descending}
		}
		return State{Field: f, Direction: Ascending}
	}
	return State{Field: f, Direction: Ascending}
}

// Sort returns a sorted copy of records. The input is left untouched and
// ties keep their input order.
func Sort(records []models.WalletRecord, s State) []models.WalletRecord {
	out := slices.Clone(records)
	cmp := comparator(s.Field)
	slices.SortStableFunc(out, func(a, b models.WalletRecord) int {
		c := cmp(a, b)
		if s.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

func comparator(f Field) func(a, b models.WalletRecord) int {
	switch f {
	case FieldAddress:
		return func(a, b models.WalletRecord) int {
			return strings.Compare(strings.ToLower(a.Address), strings.ToLower(b.Address))
		}
	case FieldTotalAmount:
		return func(a, b models.WalletRecord) int { return a.TotalAmount.Cmp(b.TotalAmount) }
	case FieldUnlockedAmount:
		return func(a, b models.WalletRecord) int { return a.UnlockedAmount.Cmp(b.UnlockedAmount) }
	case FieldLockedAmount:
		return func(a, b models.WalletRecord) int { return a.LockedAmount.Cmp(b.LockedAmount) }
	case FieldStartDate:
		return func(a, b models.WalletRecord) int { return compareDates(a.StartDate, b.StartDate) }
	case FieldEndDate:
		return func(a, b models.WalletRecord) int { return compareDates(a.EndDate, b.EndDate) }
	default:
		return func(a, b models.WalletRecord) int { return compareOrdered(a.Rank, b.Rank) }
	}
}

func compareOrdered[T int | float64 | string](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses the date formats found in schedule datasets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareDates orders by calendar time. Unparseable dates go after every
// valid one and compare by their raw text among themselves.
func compareDates(a, b string) int {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}
