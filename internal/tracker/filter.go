package tracker

import (
	"errors"
	"strings"
	"time"
)

const (
	entryLayout   = "2006-01-02T15:04:05Z"
	displayLayout = "2006-01-02 15:04:05"
	dateLayout    = "2006-01-02"
)

var errExtraPrecision = errors.New("unexpected characters after seconds")

// Open bounds used when only one side of a date range is given.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Criteria are the optional predicates of a query. A blank Name and a nil
// Range mean "no filter" for that dimension.
type Criteria struct {
	Name  string
	Range *DateRange
}

// Active reports whether any predicate is set.
func (c Criteria) Active() bool {
	return normalizeName(c.Name) != "" || c.Range != nil
}

// Filter keeps the joined records matching every active predicate.
func Filter(joined []JoinedRecord, c Criteria) ([]JoinedRecord, error) {
	if !c.Active() {
		return joined, nil
	}
	name := normalizeName(c.Name)
	out := make([]JoinedRecord, 0, len(joined))
	for _, rec := range joined {
		if name != "" && !matchesName(rec, name) {
			continue
		}
		if c.Range != nil {
			when, err := entryTime(rec)
			if err != nil {
				return nil, err
			}
			if !c.Range.Contains(when) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalizeName(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// matchesName expects an already normalized query.
func matchesName(rec JoinedRecord, query string) bool {
	full := strings.ToLower(rec.Employee.FirstName + " " + rec.Employee.LastName)
	return strings.Contains(full, query)
}

func entryTime(rec JoinedRecord) (time.Time, error) {
	raw := rec.KeyCardEntry.EntryDateTime
	t, err := time.Parse(entryLayout, raw)
	if err == nil && (len(raw) != len(entryLayout) || t.Nanosecond() != 0) {
		// time.Parse tolerates fractional seconds the layout does not name
		err = errExtraPrecision
	}
	if err != nil {
		return time.Time{}, &ParseError{EntryID: rec.KeyCardEntry.EntryID, Value: raw, Err: err}
	}
	return t, nil
}
