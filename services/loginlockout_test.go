package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockoutTiers(t *testing.T) {
	cases := []struct {
		name  string
		fails int64
		want  time.Duration
	}{
		{"no fails", 0, 0},
		{"below threshold", 2, 0},
		{"first tier", 3, 15 * time.Minute},
		{"second tier", 6, 30 * time.Minute},
		{"third tier", 9, time.Hour},
		{"fourth tier", 12, 2 * time.Hour},
		{"seventh tier", 21, 16 * time.Hour},
		{"capped", 24, 24 * time.Hour},
		{"far past the cap", 300, 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lockoutFor(tc.fails))
		})
	}
}

func TestLockoutGrowsMonotonically(t *testing.T) {
	prev := time.Duration(0)
	for fails := int64(3); fails <= 30; fails += failsPerTier {
		d := lockoutFor(fails)
		assert.GreaterOrEqual(t, d, prev, "fails=%d", fails)
		assert.LessOrEqual(t, d, 24*time.Hour, "fails=%d", fails)
		prev = d
	}
}
