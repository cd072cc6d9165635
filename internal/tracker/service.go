package tracker

import (
	"context"
	"strings"
	"time"

	"keycard/internal/records"
)

// Query holds the optional, raw filter parameters of an entries lookup.
// Dates are YYYY-MM-DD; empty strings mean "not given".
type Query struct {
	Name      string
	StartDate string
	EndDate   string
}

// Service answers entry queries against a record source.
type Service struct {
	src records.Source
}

// NewService creates a service reading from src.
func NewService(src records.Source) *Service {
	return &Service{src: src}
}

// Query joins, filters and flattens the entries matching q. The result is
// never nil.
func (s *Service) Query(ctx context.Context, q Query) ([]FlatRecord, error) {
	rng, err := ResolveRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	if rng != nil && rng.Start.After(rng.End) {
		return []FlatRecord{}, nil
	}

	joined, err := s.Joined(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := Filter(joined, Criteria{Name: q.Name, Range: rng})
	if err != nil {
		return nil, err
	}
	return Project(filtered)
}

// Joined returns the unfiltered join of all four collections.
func (s *Service) Joined(ctx context.Context) ([]JoinedRecord, error) {
	ds, err := records.LoadAll(ctx, s.src)
	if err != nil {
		return nil, err
	}
	return Join(ds.Employees, ds.Entries, ds.Images, ds.Categories), nil
}

// ResolveRange parses the optional date bounds. It returns nil when neither
// bound is given; a missing bound is opened to MinTime or MaxTime. The
// returned range may have Start after End, which callers treat as empty.
func ResolveRange(start, end string) (*DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	rng := &DateRange{Start: MinTime, End: MaxTime}
	if start != "" {
		t, err := parseDate("start_date", start)
		if err != nil {
			return nil, err
		}
		rng.Start = t
	}
	if end != "" {
		t, err := parseDate("end_date", end)
		if err != nil {
			return nil, err
		}
		rng.End = t
	}
	return rng, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: value, Err: err}
	}
	return t, nil
}
