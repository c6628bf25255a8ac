package marketdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// Simulator produces synthetic price data for a symbol. Series are
// deterministic for a given symbol and date so that repeated requests
// (and repeated backtest runs) agree with each other.
type Simulator interface {
	// Price returns the simulated price of symbol at t.
	Price(symbol string, t time.Time) float64

	// DailySeries returns days consecutive daily closes for symbol
	// starting at start.
	DailySeries(symbol string, start time.Time, days int) []float64
}

type randomWalkSimulator struct {
	basePrice  float64
	driftDaily float64
	volDaily   float64
}

// NewSimulator creates a random-walk price simulator. Each symbol walks
// from a base price derived from its name, with mild upward drift.
func NewSimulator() Simulator {
	return &randomWalkSimulator{
		basePrice:  100,
		driftDaily: 0.0003,
		volDaily:   0.02,
	}
}

// symbolSeed maps a symbol to a stable RNG seed.
func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

// epoch anchors every walk so a symbol's price on a given day is the
// same no matter which range is requested.
var epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func (s *randomWalkSimulator) walk(symbol string, throughDay int) []float64 {
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))

	// Spread base prices so symbols don't all start at the same level.
	price := s.basePrice * (0.5 + rng.Float64()*3)

	series := make([]float64, throughDay+1)
	series[0] = price
	for i := 1; i <= throughDay; i++ {
		shock := rng.NormFloat64() * s.volDaily
		price = price * math.Exp(s.driftDaily+shock)
		series[i] = price
	}
	return series
}

func daysSinceEpoch(t time.Time) int {
	d := int(t.Sub(epoch).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func (s *randomWalkSimulator) Price(symbol string, t time.Time) float64 {
	day := daysSinceEpoch(t)
	series := s.walk(symbol, day)
	return series[day]
}

func (s *randomWalkSimulator) DailySeries(symbol string, start time.Time, days int) []float64 {
	if days <= 0 {
		return nil
	}
	first := daysSinceEpoch(start)
	series := s.walk(symbol, first+days-1)
	return series[first : first+days]
}
