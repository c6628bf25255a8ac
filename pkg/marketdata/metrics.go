package marketdata

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is the conventional annualization factor.
const tradingDaysPerYear = 252

// BacktestMetrics summarizes a simulated equity curve.
type BacktestMetrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	FinalEquity      float64 `json:"final_equity"`
	Days             int     `json:"days"`
}

// ComputeBacktestMetrics evaluates a buy-and-hold equity curve over the
// given price series with the given starting capital.
func ComputeBacktestMetrics(series []float64, initialCapital float64) (*BacktestMetrics, error) {
	if len(series) < 2 {
		return nil, errors.New("price series too short")
	}
	if series[0] <= 0 {
		return nil, errors.New("price series starts at or below zero")
	}

	returns := dailyReturns(series)

	totalReturn := series[len(series)-1]/series[0] - 1
	years := float64(len(returns)) / tradingDaysPerYear
	annualized := math.Pow(1+totalReturn, 1/years) - 1

	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	sharpe := 0.0
	if sd > 0 {
		sharpe = mean / sd * math.Sqrt(tradingDaysPerYear)
	}

	return &BacktestMetrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
		MaxDrawdown:      maxDrawdown(series),
		SharpeRatio:      sharpe,
		FinalEquity:      initialCapital * (1 + totalReturn),
		Days:             len(series),
	}, nil
}

func dailyReturns(prices []float64) []float64 {
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns
}

// maxDrawdown returns the largest peak-to-trough decline as a positive
// fraction.
func maxDrawdown(prices []float64) float64 {
	peak := prices[0]
	worst := 0.0
	for _, p := range prices[1:] {
		if p > peak {
			peak = p
			continue
		}
		dd := (peak - p) / peak
		if dd > worst {
			worst = dd
		}
	}
	return worst
}
