package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"keycard/internal/store"
)

// Schema creates the four record tables. The seq column keeps the order the
// rows were loaded in, since ids are not guaranteed unique.
const Schema = `
CREATE TABLE IF NOT EXISTS employees (
	seq          INTEGER NOT NULL,
	employee_id  INTEGER NOT NULL,
	first_name   TEXT NOT NULL DEFAULT '',
	last_name    TEXT NOT NULL DEFAULT '',
	work_title   TEXT NOT NULL DEFAULT '',
	work_email   TEXT NOT NULL DEFAULT '',
	key_card_id  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS keycardentries (
	seq                INTEGER NOT NULL,
	entry_id           INTEGER NOT NULL,
	key_card_id        INTEGER NOT NULL,
	entry_date_time    TEXT NOT NULL,
	security_image_id  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
	seq                INTEGER NOT NULL,
	image_id           INTEGER NOT NULL,
	image_data         TEXT NOT NULL DEFAULT '',
	image_name         TEXT NOT NULL DEFAULT '',
	image_extension    TEXT NOT NULL DEFAULT '',
	image_category_id  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	seq            INTEGER NOT NULL,
	category_id    INTEGER NOT NULL,
	category_name  TEXT NOT NULL DEFAULT ''
);
`

// Repository reads and replaces the record tables in a SQL database.
type Repository struct {
	db *store.DB
}

var _ DatasetSource = (*Repository)(nil)

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the tables when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *Repository) Employees(ctx context.Context) ([]Employee, error) {
	return readEmployees(ctx, r.db.Client)
}

func (r *Repository) KeyCardEntries(ctx context.Context) ([]KeyCardEntry, error) {
	return readEntries(ctx, r.db.Client)
}

func (r *Repository) Images(ctx context.Context) ([]Image, error) {
	return readImages(ctx, r.db.Client)
}

func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	return readCategories(ctx, r.db.Client)
}

// Dataset reads all four tables inside one read-only transaction so a
// concurrent Replace is seen either entirely or not at all.
func (r *Repository) Dataset(ctx context.Context) (Dataset, error) {
	tx, err := r.db.Client.BeginTx(ctx, r.snapshotTxOptions())
	if err != nil {
		return Dataset{}, fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var ds Dataset
	if ds.Employees, err = readEmployees(ctx, tx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionEmployees, err)
	}
	if ds.Entries, err = readEntries(ctx, tx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionEntries, err)
	}
	if ds.Images, err = readImages(ctx, tx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionImages, err)
	}
	if ds.Categories, err = readCategories(ctx, tx); err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", CollectionCategories, err)
	}
	if err := tx.Commit(); err != nil {
		return Dataset{}, fmt.Errorf("end read: %w", err)
	}
	return ds, nil
}

// snapshotTxOptions asks postgres for a repeatable-read snapshot. SQLite
// transactions are serializable already and its driver takes no options.
func (r *Repository) snapshotTxOptions() *sql.TxOptions {
	if r.db.Driver == store.DriverPostgres {
		return &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	}
	return nil
}

func readEmployees(ctx context.Context, q queryer) ([]Employee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT employee_id, first_name, last_name, work_title, work_email, key_card_id
		FROM employees ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.EmployeeID, &e.FirstName, &e.LastName, &e.WorkTitle, &e.WorkEmail, &e.KeyCardID); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func readEntries(ctx context.Context, q queryer) ([]KeyCardEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT entry_id, key_card_id, entry_date_time, security_image_id
		FROM keycardentries ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []KeyCardEntry
	for rows.Next() {
		var e KeyCardEntry
		if err := rows.Scan(&e.EntryID, &e.KeyCardID, &e.EntryDateTime, &e.SecurityImageID); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func readImages(ctx context.Context, q queryer) ([]Image, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT image_id, image_data, image_name, image_extension, image_category_id
		FROM images ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ImageID, &img.ImageData, &img.ImageName, &img.ImageExtension, &img.ImageCategoryID); err != nil {
			return nil, err
		}
		res = append(res, img)
	}
	return res, rows.Err()
}

func readCategories(ctx context.Context, q queryer) ([]Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT category_id, category_name FROM categories ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.CategoryID, &c.CategoryName); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Replace swaps the table contents for ds inside one transaction.
func (r *Repository) Replace(ctx context.Context, ds Dataset) (err error) {
	tx, err := r.db.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{CollectionEmployees, CollectionEntries, CollectionImages, CollectionCategories} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, e := range ds.Employees {
		if err = r.insert(ctx, tx, CollectionEmployees,
			[]string{"seq", "employee_id", "first_name", "last_name", "work_title", "work_email", "key_card_id"},
			i, e.EmployeeID, e.FirstName, e.LastName, e.WorkTitle, e.WorkEmail, e.KeyCardID); err != nil {
			return err
		}
	}
	for i, e := range ds.Entries {
		if err = r.insert(ctx, tx, CollectionEntries,
			[]string{"seq", "entry_id", "key_card_id", "entry_date_time", "security_image_id"},
			i, e.EntryID, e.KeyCardID, e.EntryDateTime, e.SecurityImageID); err != nil {
			return err
		}
	}
	for i, img := range ds.Images {
		if err = r.insert(ctx, tx, CollectionImages,
			[]string{"seq", "image_id", "image_data", "image_name", "image_extension", "image_category_id"},
			i, img.ImageID, img.ImageData, img.ImageName, img.ImageExtension, img.ImageCategoryID); err != nil {
			return err
		}
	}
	for i, c := range ds.Categories {
		if err = r.insert(ctx, tx, CollectionCategories,
			[]string{"seq", "category_id", "category_name"},
			i, c.CategoryID, c.CategoryName); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) insert(ctx context.Context, tx *sql.Tx, table string, columns []string, args ...any) error {
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = r.db.Placeholder(i + 1)
	}
	query := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
