package card

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"postcard-sync/core/reconcile"
	"postcard-sync/feature/media"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(env *testEnv) *fiber.App {
	app := fiber.New()
	NewFeature(env.service).Load(app)
	return app
}

func request(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHandler_CardLifecycle(t *testing.T) {
	env := newTestEnv(t)
	app := newTestApp(env)

	status, created := request(t, app, "POST", "/cards", `{"title": ""}`)
	require.Equal(t, fiber.StatusCreated, status)
	uuid := created["uuid"].(string)
	assert.Equal(t, true, created["draft"])
	assert.Equal(t, "Untitled", created["display_title"])
	assert.Equal(t, false, created["collaborative"])

	status, edited := request(t, app, "PATCH", "/cards/"+uuid, `{"title": "Trip"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Trip", edited["display_title"])
	assert.Equal(t, true, edited["dirty"])

	status, shared := request(t, app, "PUT", "/cards/"+uuid+"/collaborative", `{"collaborative": true}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, shared["collaborative"])
	assert.Equal(t, "public", shared["privacy"])

	env.remote.On("SubmitDocument", mock.Anything, uuid, mock.Anything).Return(nil)
	status, pushed := request(t, app, "POST", "/cards/"+uuid+"/push", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "push", pushed["direction"])

	env.remote.On("FetchDocument", mock.Anything, uuid).
		Return(doc(t, `{"title": "Trip to Boston", "photos": ["a", "b"]}`), nil)
	status, pulled := request(t, app, "POST", "/cards/"+uuid+"/pull", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), pulled["children"].(map[string]any)["inserted"])

	status, got := request(t, app, "GET", "/cards/"+uuid, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Trip to Boston", got["title"])
	assert.Equal(t, false, got["draft"])
	assert.Len(t, got["photos"], 2)
}

func TestHandler_List(t *testing.T) {
	env := newTestEnv(t)
	app := newTestApp(env)

	request(t, app, "POST", "/cards", `{"title": "one"}`)
	request(t, app, "POST", "/cards", `{"title": "two"}`)

	resp, err := app.Test(httptest.NewRequest("GET", "/cards", nil))
	require.NoError(t, err)
	var all []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0]["title"])

	resp, err = app.Test(httptest.NewRequest("GET", "/cards?published=true", nil))
	require.NoError(t, err)
	var published []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&published))
	assert.Empty(t, published)
}

func TestHandler_ErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	app := newTestApp(env)

	status, body := request(t, app, "GET", "/cards/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body["outcome"])

	_, created := request(t, app, "POST", "/cards", `{"title": "Trip"}`)
	uuid := created["uuid"].(string)

	status, _ = request(t, app, "PATCH", "/cards/"+uuid, `{"timing": -5}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	env.remote.On("FetchDocument", mock.Anything, uuid).Return(nil, errors.New("no route to host")).Once()
	status, body = request(t, app, "POST", "/cards/"+uuid+"/pull", "")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "fetch_error", body["outcome"])

	env.remote.On("FetchDocument", mock.Anything, uuid).Return(doc(t, `{"photos": [""]}`), nil).Once()
	status, body = request(t, app, "POST", "/cards/"+uuid+"/pull", "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "child_error", body["outcome"])
}

func TestHandler_PhotoContent(t *testing.T) {
	env := newTestEnv(t)
	app := newTestApp(env)

	_, created := request(t, app, "POST", "/cards", `{"title": "Trip"}`)
	uuid := created["uuid"].(string)
	env.remote.On("FetchDocument", mock.Anything, uuid).Return(doc(t, `{"photos": ["/p/a/"]}`), nil)
	status, _ := request(t, app, "POST", "/cards/"+uuid+"/pull", "")
	require.Equal(t, fiber.StatusOK, status)

	object := "cards/" + uuid + "/p%2Fa"
	env.storage.On("PutObject", mock.Anything, "postcards", object, mock.Anything, int64(4), minio.PutObjectOptions{ContentType: "image/jpeg"}).
		Return(minio.UploadInfo{}, nil)
	env.storage.On("StatObject", mock.Anything, "postcards", object, mock.Anything).
		Return(minio.ObjectInfo{Size: 4, ContentType: "image/jpeg", ETag: "abc"}, nil)
	env.storage.On("GetObject", mock.Anything, "postcards", object, mock.Anything).
		Return(io.NopCloser(strings.NewReader("jpeg")), nil)

	target := "/cards/" + uuid + "/photos/" + url.PathEscape("/p/a/") + "/content"

	req := httptest.NewRequest("PUT", target, strings.NewReader("jpeg"))
	req.Header.Set("Content-Type", "image/jpeg")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	status, _ = request(t, app, "GET", "/cards/"+uuid+"/photos/zzz/content", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandler_Share(t *testing.T) {
	env := newTestEnv(t)
	app := newTestApp(env)

	status, created := request(t, app, "POST", "/cards", `{"title": "Trip"}`)
	require.Equal(t, fiber.StatusCreated, status)
	uuid := created["uuid"].(string)

	status, body := request(t, app, "GET", "/cards/"+uuid+"/share", "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, body["error"], "no web url")

	env.remote.On("FetchDocument", mock.Anything, uuid).Return(doc(t, `{"url": "/card/9/"}`), nil)
	status, _ = request(t, app, "POST", "/cards/"+uuid+"/pull", "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = request(t, app, "GET", "/cards/"+uuid+"/share", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "https://postcards.example.org/card/9/", body["url"])
	assert.Equal(t, "Trip", body["title"])

	status, _ = request(t, app, "GET", "/cards/missing/share", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{reconcile.ErrNotFound, fiber.StatusNotFound},
		{media.ErrNotFound, fiber.StatusNotFound},
		{&reconcile.FetchError{Err: errors.New("x")}, fiber.StatusBadGateway},
		{&reconcile.SubmitError{Err: errors.New("x")}, fiber.StatusBadGateway},
		{&reconcile.ChildReconcileError{Reason: "dup"}, fiber.StatusConflict},
		{&reconcile.CommitError{Err: errors.New("x")}, fiber.StatusInternalServerError},
		{ErrInvalid, fiber.StatusUnprocessableEntity},
		{ErrNotPublished, fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
