package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.ObserveCycle("pull", "ok", 20*time.Millisecond)
	r.ObserveCycle("pull", "ok", 30*time.Millisecond)
	r.ObserveCycle("push", "submit_error", time.Millisecond)
	r.FieldTypeError("frame_delay")
	r.Conflicts(2)
	r.Conflicts(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cycles.WithLabelValues("pull", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cycles.WithLabelValues("push", "submit_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fieldTypes.WithLabelValues("frame_delay")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.conflicts))
}

func TestRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveCycle("pull", "ok", time.Second)
		r.FieldTypeError("title")
		r.Conflicts(1)
	})
}
