package telemetry

import (
	"testing"

	"github.com/delus-studio/storefront/internal/observability"
	"github.com/stretchr/testify/assert"
)

type countingCounter struct{ total float64 }

func (c *countingCounter) Add(d float64, _ ...observability.Label) { c.total += d }

func TestProviderResolvesRegisteredInstruments(t *testing.T) {
	c := &countingCounter{}
	tel := New(nil, nil, map[observability.MetricKey]observability.Counter{
		observability.MStockDecrements: c,
		observability.MHTTPRequests:    nil,
	}, nil)

	tel.Metrics().Counter(observability.MStockDecrements).Add(3)
	assert.Equal(t, float64(3), c.total)

	t.Run("UnknownKeysAreNop", func(t *testing.T) {
		assert.NotPanics(t, func() {
			tel.Metrics().Counter(observability.MHTTPRequests).Add(1)
			tel.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)
		})
	})

	t.Run("DefaultsForNilParts", func(t *testing.T) {
		assert.NotNil(t, tel.Tracer())
		assert.NotNil(t, tel.Logger())
	})
}
