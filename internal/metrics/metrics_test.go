package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.OperationsTotal)
	assert.NotNil(t, m.OperationDuration)
	assert.NotNil(t, m.GeometryVertices)
	assert.NotNil(t, m.RecoveriesTotal)
}

func TestNewWithLogger(t *testing.T) {
	m := NewWithLogger(nil)
	assert.NotNil(t, m)
	assert.Nil(t, m.logger)
}

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("single_ring", 0.25, 360)
	m.ObserveOperation("single_ring", 0.50, 720)
	m.ObserveOperation("multi_ring", 1.0, 1440)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("single_ring")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("multi_ring")))
}

func TestRecordRecovery(t *testing.T) {
	m := New()

	m.RecordRecovery("antimeridian_passthrough")
	m.RecordRecovery("antimeridian_passthrough")
	m.RecordRecovery("reverse_intersection_empty")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RecoveriesTotal.WithLabelValues("antimeridian_passthrough")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RecoveriesTotal.WithLabelValues("reverse_intersection_empty")))
}

func TestSeparateRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ObserveOperation("donut_ring", 0.1, 100)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.OperationsTotal.WithLabelValues("donut_ring")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.OperationsTotal.WithLabelValues("donut_ring")))
}
