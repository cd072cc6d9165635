package records

import (
	"context"
	"fmt"
)

// Employee is a badge holder. KeyCardID links it to KeyCardEntry rows.
type Employee struct {
	EmployeeID int    `json:"EmployeeId"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
	WorkTitle  string `json:"WorkTitle"`
	WorkEmail  string `json:"WorkEmail"`
	KeyCardID  int    `json:"KeyCardId"`
}

// KeyCardEntry is a single badge swipe. EntryDateTime is kept as stored
// (2006-01-02T15:04:05Z) and parsed when a query needs it.
type KeyCardEntry struct {
	EntryID         int    `json:"EntryId"`
	KeyCardID       int    `json:"KeyCardId"`
	EntryDateTime   string `json:"EntryDateTime"`
	SecurityImageID int    `json:"SecurityImageId"`
}

// Image is the security camera capture taken for an entry.
type Image struct {
	ImageID         int    `json:"ImageId"`
	ImageData       string `json:"ImageData"`
	ImageName       string `json:"ImageName"`
	ImageExtension  string `json:"ImageExtension"`
	ImageCategoryID int    `json:"ImageCategoryId"`
}

// Category classifies images.
type Category struct {
	CategoryID   int    `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
}

// Source supplies the four record collections in a stable order.
type Source interface {
	Employees(ctx context.Context) ([]Employee, error)
	KeyCardEntries(ctx context.Context) ([]KeyCardEntry, error)
	Images(ctx context.Context) ([]Image, error)
	Categories(ctx context.Context) ([]Category, error)
}

// Collection names shared by the file, SQL and Redis backends.
const (
	CollectionEmployees  = "employees"
	CollectionEntries    = "keycardentries"
	CollectionImages     = "images"
	CollectionCategories = "categories"
)

// Dataset is one complete load of all four collections.
type Dataset struct {
	Employees  []Employee
	Entries    []KeyCardEntry
	Images     []Image
	Categories []Category
}

// DatasetSource is implemented by sources that can hand out all four
// collections from one consistent view.
type DatasetSource interface {
	Dataset(ctx context.Context) (Dataset, error)
}

// LoadAll reads every collection from src. Any failure aborts the whole load.
func LoadAll(ctx context.Context, src Source) (Dataset, error) {
	if ds, ok := src.(DatasetSource); ok {
		return ds.Dataset(ctx)
	}
	var (
		ds  Dataset
		err error
	)
	if ds.Employees, err = src.Employees(ctx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionEmployees, err)
	}
	if ds.Entries, err = src.KeyCardEntries(ctx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionEntries, err)
	}
	if ds.Images, err = src.Images(ctx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionImages, err)
	}
	if ds.Categories, err = src.Categories(ctx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionCategories, err)
	}
	return ds, nil
}

// Counts reports the size of each collection keyed by collection name.
func (d Dataset) Counts() map[string]int {
	return map[string]int{
		CollectionEmployees:  len(d.Employees),
		CollectionEntries:    len(d.Entries),
		CollectionImages:     len(d.Images),
		CollectionCategories: len(d.Categories),
	}
}
