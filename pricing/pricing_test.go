package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"no discount", 120, 0, 120},
		{"ten percent", 120, 10, 108},
		{"rounds to cents", 19.99, 15, 16.99},
		{"full discount", 50, 100, 0},
		{"negative discount ignored", 50, -5, 50},
		{"discount above hundred clamped", 50, 150, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FinalPrice(tc.price, tc.discount))
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 324.0, LineTotal(120, 10, 3))
	assert.Equal(t, 0.3, LineTotal(0.1, 0, 3))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(10800), MinorUnits(108))
	assert.Equal(t, int64(30), MinorUnits(0.1+0.2))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
}
