package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSSIToDistance(t *testing.T) {
	assert.InDelta(t, 1.0, RSSIToDistance(-59, -59, 2.5), 0.001)
	assert.InDelta(t, 10.0, RSSIToDistance(-84, -59, 2.5), 0.001)
	assert.Equal(t, 0.1, RSSIToDistance(0, -59, 2.5))
	assert.Equal(t, 0.1, RSSIToDistance(-20, -59, 2.5))
}

func TestProximity(t *testing.T) {
	cases := map[float64]string{
		0.5: "immediate",
		3:   "near",
		10:  "far",
		40:  "edge",
	}
	for m, want := range cases {
		assert.Equal(t, want, Proximity(m), "%vm", m)
	}
}
