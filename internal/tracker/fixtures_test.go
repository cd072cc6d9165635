package tracker

import (
	"context"
	"errors"

	"keycard/internal/records"
)

type staticSource struct {
	ds    records.Dataset
	err   error
	calls int
}

func (s *staticSource) Dataset(context.Context) (records.Dataset, error) {
	s.calls++
	if s.err != nil {
		return records.Dataset{}, s.err
	}
	return s.ds, nil
}

func (s *staticSource) Employees(context.Context) ([]records.Employee, error) {
	return s.ds.Employees, s.err
}

func (s *staticSource) KeyCardEntries(context.Context) ([]records.KeyCardEntry, error) {
	return s.ds.Entries, s.err
}

func (s *staticSource) Images(context.Context) ([]records.Image, error) {
	return s.ds.Images, s.err
}

func (s *staticSource) Categories(context.Context) ([]records.Category, error) {
	return s.ds.Categories, s.err
}

var errSourceDown = errors.New("source down")

// fixture: three employees, five entries, all resolvable. Joined order by
// employee then entry is 10, 13, 11, 14, 12.
func fixture() records.Dataset {
	return records.Dataset{
		Employees: []records.Employee{
			{EmployeeID: 1, FirstName: "Jean", LastName: "Luc", WorkTitle: "Engineer", WorkEmail: "jean.luc@fwri.org", KeyCardID: 100},
			{EmployeeID: 2, FirstName: "Mary", LastName: "Jean", WorkTitle: "Biologist", WorkEmail: "mary.jean@fwri.org", KeyCardID: 200},
			{EmployeeID: 3, FirstName: "Sam", LastName: "Smith", WorkTitle: "Technician", WorkEmail: "sam.smith@fwri.org", KeyCardID: 300},
		},
		Entries: []records.KeyCardEntry{
			{EntryID: 10, KeyCardID: 100, EntryDateTime: "2023-10-15T14:30:00Z", SecurityImageID: 1000},
			{EntryID: 11, KeyCardID: 200, EntryDateTime: "2023-10-14T23:59:59Z", SecurityImageID: 1001},
			{EntryID: 12, KeyCardID: 300, EntryDateTime: "2023-10-16T08:00:00Z", SecurityImageID: 1002},
			{EntryID: 13, KeyCardID: 100, EntryDateTime: "2023-10-17T09:15:00Z", SecurityImageID: 1000},
			{EntryID: 14, KeyCardID: 200, EntryDateTime: "2023-10-15T00:00:00Z", SecurityImageID: 1001},
		},
		Images: []records.Image{
			{ImageID: 1000, ImageData: "aW1nMTAwMA==", ImageName: "front_door", ImageExtension: "jpg", ImageCategoryID: 1},
			{ImageID: 1001, ImageData: "aW1nMTAwMQ==", ImageName: "lab_door", ImageExtension: "png", ImageCategoryID: 2},
			{ImageID: 1002, ImageData: "aW1nMTAwMg==", ImageName: "side_gate", ImageExtension: "jpg", ImageCategoryID: 1},
		},
		Categories: []records.Category{
			{CategoryID: 1, CategoryName: "Entrance"},
			{CategoryID: 2, CategoryName: "Laboratory"},
		},
	}
}

func entryIDs[T any](items []T, id func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func flatIDs(recs []FlatRecord) []int {
	return entryIDs(recs, func(r FlatRecord) int { return r.EntryID })
}

func joinedIDs(recs []JoinedRecord) []int {
	return entryIDs(recs, func(r JoinedRecord) int { return r.KeyCardEntry.EntryID })
}
