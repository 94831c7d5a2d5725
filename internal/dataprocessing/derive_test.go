package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

func TestSmoothedDelta(t *testing.T) {
	tests := []struct {
		name   string
		terms  []domain.NullFloat
		policy TailPolicy
		want   domain.NullFloat
	}{
		{"full window", []domain.NullFloat{domain.Float(0), domain.Float(6), domain.Float(0)}, TailDegrade, domain.Float(2)},
		{"full window strict", []domain.NullFloat{domain.Float(3), domain.Float(3), domain.Float(3)}, TailStrict, domain.Float(3)},
		{"two terms degrade", []domain.NullFloat{domain.Float(1), domain.Float(2)}, TailDegrade, domain.Float(1.5)},
		{"two terms strict", []domain.NullFloat{domain.Float(1), domain.Float(2)}, TailStrict, domain.Null()},
		{"null term", []domain.NullFloat{domain.Float(1), domain.Null(), domain.Float(2)}, TailDegrade, domain.Null()},
		{"empty", nil, TailDegrade, domain.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmoothedDelta(tt.terms, tt.policy))
		})
	}
}

func TestLogGrowth(t *testing.T) {
	tests := []struct {
		name     string
		lag      domain.NullFloat
		smoothed domain.NullFloat
		want     domain.NullFloat
	}{
		{"growth", domain.Float(100), domain.Float(2), domain.Float(math.Log(1.02))},
		{"no change", domain.Float(100), domain.Float(0), domain.Float(0)},
		{"zero lag", domain.Float(0), domain.Float(5), domain.Null()},
		{"negative lag", domain.Float(-10), domain.Float(-5), domain.Null()},
		{"non-positive level", domain.Float(10), domain.Float(-10), domain.Null()},
		{"null lag", domain.Null(), domain.Float(1), domain.Null()},
		{"null smoothed", domain.Float(10), domain.Null(), domain.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogGrowth(tt.lag, tt.smoothed)
			assert.Equal(t, tt.want.Valid, got.Valid)
			assert.InDelta(t, tt.want.Float64, got.Float64, 1e-12)
		})
	}
}

func TestFinalize_FirstObservationOverride(t *testing.T) {
	record := domain.DerivedRecord{
		Lag:              domain.Float(10),
		FirstObservation: true,
	}
	got := Finalize(record, []domain.NullFloat{domain.Float(9), domain.Float(9), domain.Float(9)}, TailDegrade)

	assert.Equal(t, domain.Float(0), got.SmoothedDelta)
	assert.False(t, got.LogGrowth.Valid)
	assert.Equal(t, 3, got.WindowTerms)
}

func TestRawDelta(t *testing.T) {
	assert.Equal(t, domain.Float(6), RawDelta(domain.Float(106), domain.Float(100)))
	assert.False(t, RawDelta(domain.Float(106), domain.Null()).Valid)
	assert.False(t, RawDelta(domain.Null(), domain.Float(1)).Valid)
}
