package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"postcard-sync/core/database"
	"postcard-sync/core/storage/mocks"
	"postcard-sync/feature/card"
	"postcard-sync/feature/card/models"
	"postcard-sync/feature/media"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listing(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, o := range objects {
		ch <- o
	}
	close(ch)
	return ch
}

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client) {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "cards.db"),
	})
	require.NoError(t, err)
	store := card.NewStore(db)
	require.NoError(t, store.Migrate())
	require.NoError(t, store.Create(context.Background(), &models.Card{
		UUID:    "u1",
		Privacy: models.PrivacyProtected,
		Media:   []models.CardMedia{{RemoteKey: "a"}, {RemoteKey: "b", Position: 1}},
	}))

	mockClient := new(mocks.Client)
	feature := NewFeature(Deps{
		Storage: mockClient,
		Bucket:  "test-bucket",
		DB:      db,
		Columns: card.RequiredColumns(),
		Photos:  store,
		Media:   media.NewResolver(mockClient, "test-bucket", "cards/", nil),
		Logger:  zap.NewNop(),
	})

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, mockClient
}

func getJSON(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestLoader(t *testing.T) {
	feature := NewFeature(Deps{Storage: new(mocks.Client)})
	assert.Equal(t, "integrity", feature.Name())
	assert.False(t, feature.IsEnabled())
}

func TestHandleStorageCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", minio.MakeBucketOptions{}).Return(nil).Once()

	status, body := getJSON(t, app, "/integrity/storage")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, false, body["exists"])
	mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)

	status, body = getJSON(t, app, "/integrity/storage?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertExpectations(t)
}

func TestHandleStorageCheckError(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, errors.New("refused"))

	status, body := getJSON(t, app, "/integrity/storage")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "refused")
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := getJSON(t, app, "/integrity/schema")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Empty(t, body["missing"])
}

func TestHandleMediaCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)

	// each listing is drained by one request
	for range 2 {
		mockClient.On("ListObjects", mock.Anything, "test-bucket", minio.ListObjectsOptions{Prefix: "cards/", Recursive: true}).
			Return(listing(minio.ObjectInfo{Key: "cards/u1/a"}, minio.ObjectInfo{Key: "cards/gone/x"})).Once()
	}

	var removed []string
	mockClient.On("RemoveObjects", mock.Anything, "test-bucket", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for obj := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, obj.Key)
			}
		}).
		Return(nil)

	status, body := getJSON(t, app, "/integrity/media")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, float64(2), body["photos"])
	assert.Equal(t, []any{"cards/u1/b"}, body["missing"])
	assert.Equal(t, []any{"cards/gone/x"}, body["orphans"])
	assert.Empty(t, removed)

	status, body = getJSON(t, app, "/integrity/media?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	assert.Equal(t, []string{"cards/gone/x"}, removed)
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).
		Return(listing(minio.ObjectInfo{Err: errors.New("denied")}))

	status, body := getJSON(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["storage"].(map[string]any)["status"])
	assert.Equal(t, "checked", body["schema"].(map[string]any)["status"])
	assert.Equal(t, "error", body["media"].(map[string]any)["status"])
}
