package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMustRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		MustRegister(reg)
		MustRegister(reg)
	})

	PhonesTotal.WithLabelValues("applied").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(PhonesTotal.WithLabelValues("applied")), 1.0)
}
