package forecast

import (
	"errors"
	"time"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
)

const (
	fallbackMethod = "moving_average_7d"

	baselineWindow   = 7
	dispersionWindow = 30
)

// fallbackModel scales the trailing 7-day mean by a weekday factor. The band
// is a fixed ±1.96 sample standard deviations of the trailing 30 days.
type fallbackModel struct{}

func (fallbackModel) model() entities.ModelName { return entities.ModelFallback }

func (fallbackModel) method() string { return fallbackMethod }

func (fallbackModel) predict(series []entities.TimeSeriesPoint, horizon int) (*strategyResult, error) {
	values := entities.Quantities(series)

	baseline := stats.Mean(stats.Tail(values, baselineWindow))
	dispersion := stats.SampleStdDev(stats.Tail(values, dispersionWindow))

	factors, err := weekdayFactors(series)
	if err != nil {
		return nil, entities.NewComputationError(fallbackMethod, err)
	}

	last := series[len(series)-1].Date
	halfWidth := intervalZ * dispersion

	predictions := make([]prediction, horizon)
	for i := range predictions {
		factor, ok := factors[last.AddDays(i+1).Weekday()]
		if !ok {
			factor = 1
		}
		estimate := baseline * factor
		predictions[i] = prediction{
			estimate: estimate,
			lower:    estimate - halfWidth,
			upper:    estimate + halfWidth,
		}
	}

	recent := stats.Round2(baseline)
	return &strategyResult{
		predictions:   predictions,
		recentAverage: &recent,
	}, nil
}

// weekdayFactors maps each weekday present in the history to its mean
// divided by the overall mean
func weekdayFactors(series []entities.TimeSeriesPoint) (map[time.Weekday]float64, error) {
	overall := stats.Mean(entities.Quantities(series))
	if overall == 0 {
		return nil, errors.New("overall mean is zero, weekday factors are undefined")
	}

	byWeekday := make(map[time.Weekday][]float64, 7)
	for _, p := range series {
		wd := p.Date.Weekday()
		byWeekday[wd] = append(byWeekday[wd], p.Quantity)
	}

	factors := make(map[time.Weekday]float64, len(byWeekday))
	for wd, values := range byWeekday {
		factors[wd] = stats.Mean(values) / overall
	}
	return factors, nil
}
