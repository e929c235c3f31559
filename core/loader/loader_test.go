package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(app fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	on := &fakeFeature{name: "card", enabled: true}
	off := &fakeFeature{name: "legacy"}

	mgr := NewManager(nil)
	mgr.Register(on)
	mgr.Register(off)

	assert.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, mgr.Features(), 2)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	broken := &fakeFeature{name: "card", enabled: true, err: errors.New("no schema")}
	after := &fakeFeature{name: "media", enabled: true}

	mgr := NewManager(nil)
	mgr.Register(broken)
	mgr.Register(after)

	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "failed to load feature card")
	assert.False(t, after.loaded)
}
