package checks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"postcard-sync/core/database"
	"postcard-sync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBucket(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("BucketExists", ctx, "there").Return(true, nil)
	m.On("BucketExists", ctx, "gone").Return(false, nil)
	m.On("BucketExists", ctx, "broken").Return(false, errors.New("refused"))

	ok, err := CheckBucket(ctx, m, "there")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckBucket(ctx, m, "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckBucket(ctx, m, "broken")
	assert.ErrorContains(t, err, "refused")
}

func TestCheckSchema(t *testing.T) {
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "schema.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE cards (id integer primary key, uuid text, title text)").Error)
	require.NoError(t, db.Exec("CREATE TABLE card_media (id integer primary key, card_id integer)").Error)

	missing, err := CheckSchema(db, map[string][]string{
		"cards":      {"uuid", "title", "timing"},
		"card_media": {"card_id"},
		"absent":     {"id"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"cards":  {"timing"},
		"absent": {"id"},
	}, missing)
}

func TestCompareMedia(t *testing.T) {
	report := CompareMedia(
		[]string{"cards/u1/a", "cards/u1/b", "cards/u2/c"},
		[]string{"cards/u1/a", "cards/u1/z", "cards/u3/y"},
	)
	assert.Equal(t, MediaReport{
		Photos:  3,
		Stored:  3,
		Missing: []string{"cards/u1/b", "cards/u2/c"},
		Orphans: []string{"cards/u1/z", "cards/u3/y"},
	}, report)

	empty := CompareMedia(nil, nil)
	assert.Empty(t, empty.Missing)
	assert.NotNil(t, empty.Orphans)
}
