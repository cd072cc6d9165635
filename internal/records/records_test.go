package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keycard/internal/store"
)

func sampleDataset() Dataset {
	return Dataset{
		Employees: []Employee{
			{EmployeeID: 2, FirstName: "Mary", LastName: "Jean", WorkTitle: "Biologist", WorkEmail: "mary.jean@fwri.org", KeyCardID: 200},
			{EmployeeID: 1, FirstName: "Jean", LastName: "Luc", WorkTitle: "Engineer", WorkEmail: "jean.luc@fwri.org", KeyCardID: 100},
		},
		Entries: []KeyCardEntry{
			{EntryID: 11, KeyCardID: 200, EntryDateTime: "2023-10-14T23:59:59Z", SecurityImageID: 1001},
			{EntryID: 10, KeyCardID: 100, EntryDateTime: "2023-10-15T14:30:00Z", SecurityImageID: 1000},
			{EntryID: 10, KeyCardID: 100, EntryDateTime: "not a date", SecurityImageID: 1000},
		},
		Images: []Image{
			{ImageID: 1000, ImageData: "aW1nMA==", ImageName: "front_door", ImageExtension: "jpg", ImageCategoryID: 1},
			{ImageID: 1001, ImageData: "aW1nMQ==", ImageName: "lab_door", ImageExtension: "png", ImageCategoryID: 2},
		},
		Categories: []Category{
			{CategoryID: 2, CategoryName: "Laboratory"},
			{CategoryID: 1},
		},
	}
}

func writeJSON(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, CollectionEmployees, `[{"EmployeeId": 7, "FirstName": "Ana", "LastName": "Ortiz", "WorkTitle": "Diver", "WorkEmail": "ana@fwri.org", "KeyCardId": 70}]`)
	writeJSON(t, dir, CollectionEntries, `[{"EntryId": 1, "KeyCardId": 70, "EntryDateTime": "2023-10-15T14:30:00Z", "SecurityImageId": 5}]`)
	writeJSON(t, dir, CollectionImages, `[{"ImageId": 5, "ImageData": "eA==", "ImageName": "dock", "ImageExtension": "jpg", "ImageCategoryId": 3}]`)
	writeJSON(t, dir, CollectionCategories, `[{"categoryId": 3, "categoryName": "Dock"}]`)

	ds, err := LoadAll(context.Background(), NewFileSource(dir))
	require.NoError(t, err)

	assert.Equal(t, []Employee{{EmployeeID: 7, FirstName: "Ana", LastName: "Ortiz", WorkTitle: "Diver", WorkEmail: "ana@fwri.org", KeyCardID: 70}}, ds.Employees)
	assert.Equal(t, []KeyCardEntry{{EntryID: 1, KeyCardID: 70, EntryDateTime: "2023-10-15T14:30:00Z", SecurityImageID: 5}}, ds.Entries)
	assert.Equal(t, []Image{{ImageID: 5, ImageData: "eA==", ImageName: "dock", ImageExtension: "jpg", ImageCategoryID: 3}}, ds.Images)
	assert.Equal(t, []Category{{CategoryID: 3, CategoryName: "Dock"}}, ds.Categories)
	assert.Equal(t, map[string]int{"employees": 1, "keycardentries": 1, "images": 1, "categories": 1}, ds.Counts())
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, CollectionEmployees, `[]`)

	_, err := LoadAll(context.Background(), NewFileSource(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load keycardentries")
	assert.ErrorIs(t, err, os.ErrNotExist)

	writeJSON(t, dir, CollectionEntries, `{"not": "an array"}`)
	_, err = LoadAll(context.Background(), NewFileSource(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewDB(ctx, store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx))

	want := sampleDataset()
	require.NoError(t, repo.Replace(ctx, want))

	got, err := LoadAll(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// a second replace drops the previous rows
	smaller := want
	smaller.Entries = want.Entries[:1]
	require.NoError(t, repo.Replace(ctx, smaller))
	entries, err := repo.KeyCardEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller.Entries, entries)
}

func TestRepository_DatasetMatchesTableReads(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewDB(ctx, store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Replace(ctx, sampleDataset()))

	ds, err := repo.Dataset(ctx)
	require.NoError(t, err)
	employees, err := repo.Employees(ctx)
	require.NoError(t, err)
	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, employees, ds.Employees)
	assert.Equal(t, categories, ds.Categories)

	// the read transaction released the single sqlite connection
	require.NoError(t, repo.Replace(ctx, Dataset{}))
	ds, err = repo.Dataset(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Entries)
}

func TestRepository_MissingTables(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewDB(ctx, store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = LoadAll(ctx, NewRepository(db))
	assert.Error(t, err)
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := store.NewDB(context.Background(), "mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported sql driver")
}

// fakeRedis serves GET and MGET from a map.
type fakeRedis struct {
	values map[string]string
	err    error
	gets   int
	mgets  int
}

func (f *fakeRedis) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	f.mgets++
	if f.err != nil {
		return redis.NewSliceResult(nil, f.err)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := f.values[k]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) TxPipelined(context.Context, func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return nil, errors.New("not supported by fake")
}

func TestRedisSource(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{
		"fwri:employees":      `[{"EmployeeId": 1, "FirstName": "Jean", "LastName": "Luc", "KeyCardId": 100}]`,
		"fwri:keycardentries": `[{"EntryId": 10, "KeyCardId": 100, "EntryDateTime": "2023-10-15T14:30:00Z", "SecurityImageId": 1000}]`,
		"fwri:images":         `[{"ImageId": 1000, "ImageName": "front_door", "ImageCategoryId": 1}]`,
		"fwri:categories":     `[{"categoryId": 1}]`,
	}}
	src := NewRedisSource(fake, "fwri")

	ds, err := LoadAll(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "Jean", ds.Employees[0].FirstName)
	assert.Equal(t, 1000, ds.Entries[0].SecurityImageID)
	assert.Equal(t, "front_door", ds.Images[0].ImageName)
	assert.Equal(t, 1, ds.Categories[0].CategoryID)
	assert.Equal(t, 1, fake.mgets)
	assert.Zero(t, fake.gets)
}

func TestRedisSource_DatasetErrors(t *testing.T) {
	ctx := context.Background()
	full := map[string]string{
		"keycard:employees":      `[]`,
		"keycard:keycardentries": `[]`,
		"keycard:images":         `[]`,
		"keycard:categories":     `[]`,
	}

	missing := map[string]string{}
	for k, v := range full {
		missing[k] = v
	}
	delete(missing, "keycard:images")
	_, err := LoadAll(ctx, NewRedisSource(&fakeRedis{values: missing}, ""))
	assert.ErrorContains(t, err, "load images: redis key keycard:images not found")

	broken := map[string]string{}
	for k, v := range full {
		broken[k] = v
	}
	broken["keycard:categories"] = "{"
	_, err = LoadAll(ctx, NewRedisSource(&fakeRedis{values: broken}, ""))
	assert.ErrorContains(t, err, "decode keycard:categories")

	boom := errors.New("connection refused")
	_, err = LoadAll(ctx, NewRedisSource(&fakeRedis{err: boom}, ""))
	assert.ErrorIs(t, err, boom)
}

func TestRedisSource_Errors(t *testing.T) {
	src := NewRedisSource(&fakeRedis{values: map[string]string{}}, "")
	_, err := src.Employees(context.Background())
	assert.ErrorContains(t, err, "redis key keycard:employees not found")

	src = NewRedisSource(&fakeRedis{values: map[string]string{"keycard:images": "{"}}, "")
	_, err = src.Images(context.Background())
	assert.ErrorContains(t, err, "decode keycard:images")

	boom := errors.New("connection refused")
	src = NewRedisSource(&fakeRedis{err: boom}, "")
	_, err = src.Categories(context.Background())
	assert.ErrorIs(t, err, boom)
}

// TestRedisSource_Replace needs a live server: REDIS_ADDR=localhost:6379.
func TestRedisSource_Replace(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	r := store.NewRedis(addr)
	t.Cleanup(func() { _ = r.Close() })
	require.True(t, r.Healthy(ctx))

	src := NewRedisSource(r.Client, "keycard-test")
	want := sampleDataset()
	require.NoError(t, src.Replace(ctx, want))

	got, err := LoadAll(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRepository_MatchesFileSource(t *testing.T) {
	ctx := context.Background()
	fromFiles, err := LoadAll(ctx, NewFileSource("../../assets"))
	require.NoError(t, err)
	require.NotEmpty(t, fromFiles.Entries)

	db, err := store.NewDB(ctx, store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Replace(ctx, fromFiles))

	fromSQL, err := LoadAll(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, fromFiles, fromSQL)
}
