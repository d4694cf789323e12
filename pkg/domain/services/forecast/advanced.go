package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/services/stats"
)

const (
	advancedMethod = "seasonal_decomposition"

	// keeps the unpenalised intercept and slope columns positive definite
	ridgeFloor = 1e-9
)

// AdvancedOptions tunes the trend and seasonality fit
type AdvancedOptions struct {
	// Changepoints is the maximum number of trend changepoints
	Changepoints int `yaml:"changepoints"`
	// ChangepointRange is the leading fraction of history where changepoints may sit
	ChangepointRange float64 `yaml:"changepoint_range"`
	// ChangepointPriorScale bounds trend flexibility; smaller is stiffer
	ChangepointPriorScale float64 `yaml:"changepoint_prior_scale"`
	// SeasonalityPriorScale bounds the seasonal amplitude
	SeasonalityPriorScale float64 `yaml:"seasonality_prior_scale"`
}

// DefaultAdvancedOptions returns the standard tuning
func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
	}
}

func (o AdvancedOptions) withDefaults() AdvancedOptions {
	d := DefaultAdvancedOptions()
	if o.Changepoints <= 0 {
		o.Changepoints = d.Changepoints
	}
	if o.ChangepointRange <= 0 || o.ChangepointRange > 1 {
		o.ChangepointRange = d.ChangepointRange
	}
	if o.ChangepointPriorScale <= 0 {
		o.ChangepointPriorScale = d.ChangepointPriorScale
	}
	if o.SeasonalityPriorScale <= 0 {
		o.SeasonalityPriorScale = d.SeasonalityPriorScale
	}
	return o
}

// seasonality is one Fourier component. A component is fitted only when
// the history spans at least minSpanDays, so short histories do not
// extrapolate an unobserved cycle.
type seasonality struct {
	name        string
	period      float64
	order       int
	minSpanDays float64
}

// Daily seasonality (period 1) is invisible to one observation per day and
// is never fitted for calendar-date input.
var seasonalities = []seasonality{
	{name: "weekly", period: 7, order: 3, minSpanDays: 14},
	{name: "yearly", period: 365.25, order: 10, minSpanDays: 730},
}

// advancedModel fits y(t) = g(t) * (1 + s(t)) where g is a piecewise-linear
// trend and s a sum of Fourier terms. The trend is fitted first by ridge
// regression; the seasonal coefficients are then fitted against the trend
// residual with regressors scaled by g.
type advancedModel struct {
	options AdvancedOptions
}

func (advancedModel) model() entities.ModelName { return entities.ModelAdvanced }

func (advancedModel) method() string { return advancedMethod }

func (m advancedModel) predict(series []entities.TimeSeriesPoint, horizon int) (*strategyResult, error) {
	n := len(series)
	values := entities.Quantities(series)

	days := make([]float64, n)
	for i, p := range series {
		days[i] = float64(p.Date.DaysSince(series[0].Date))
	}
	span := days[n-1]
	if span <= 0 {
		return nil, entities.NewComputationError("prepare", errors.New("history spans no time"))
	}

	scale := floats.Max(values)
	if scale == 0 {
		scale = 1
	}
	scaled := make([]float64, n)
	floats.ScaleTo(scaled, 1/scale, values)

	tScaled := make([]float64, n)
	floats.ScaleTo(tScaled, 1/span, days)

	changepoints := m.changepoints(tScaled)
	trendX := trendDesign(tScaled, changepoints)
	trendPenalty := make([]float64, 2+len(changepoints))
	trendPenalty[0], trendPenalty[1] = ridgeFloor, ridgeFloor
	for j := range changepoints {
		trendPenalty[2+j] = 1 / (m.options.ChangepointPriorScale * m.options.ChangepointPriorScale)
	}

	trendCoef, err := ridge(trendX, scaled, trendPenalty)
	if err != nil {
		return nil, entities.NewComputationError("fit trend", err)
	}

	trend := make([]float64, n)
	for i := range trend {
		trend[i] = floats.Dot(trendX.RawRowView(i), trendCoef)
	}
	if floats.Max(trend) <= 0 {
		return nil, entities.NewComputationError("fit seasonality", errors.New("non-positive trend cannot carry multiplicative seasonality"))
	}

	components := activeSeasonalities(span)
	var seasonalCoef []float64
	if len(components) > 0 {
		features := fourierDesign(days, components)
		_, cols := features.Dims()

		// residual y - g regressed on g * F
		design := mat.NewDense(n, cols, nil)
		residual := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < cols; j++ {
				design.Set(i, j, trend[i]*features.At(i, j))
			}
			residual[i] = scaled[i] - trend[i]
		}

		penalty := make([]float64, cols)
		for j := range penalty {
			penalty[j] = 1 / (m.options.SeasonalityPriorScale * m.options.SeasonalityPriorScale)
		}

		seasonalCoef, err = ridge(design, residual, penalty)
		if err != nil {
			return nil, entities.NewComputationError("fit seasonality", err)
		}
	}

	evaluate := func(day float64) float64 {
		g := floats.Dot(trendRow(day/span, changepoints), trendCoef)
		s := 0.0
		if seasonalCoef != nil {
			s = floats.Dot(fourierRow(day, components), seasonalCoef)
		}
		return g * (1 + s) * scale
	}

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	for i := range fitted {
		fitted[i] = evaluate(days[i])
		residuals[i] = values[i] - fitted[i]
	}
	sigma := stats.SampleStdDev(residuals)
	if !stats.AllFinite(sigma) || !stats.AllFinite(fitted...) {
		return nil, entities.NewComputationError("fit", errors.New("non-finite in-sample fit"))
	}

	predictions := make([]prediction, horizon)
	for h := 1; h <= horizon; h++ {
		estimate := evaluate(days[n-1] + float64(h))
		halfWidth := intervalZ * sigma * math.Sqrt(1+float64(h)/float64(n))
		predictions[h-1] = prediction{
			estimate: estimate,
			lower:    estimate - halfWidth,
			upper:    estimate + halfWidth,
		}
	}

	mape := stats.Round2(stats.MAPE(values, fitted))
	return &strategyResult{
		predictions: predictions,
		errorRate:   &mape,
	}, nil
}

// changepoints places up to Changepoints candidates evenly over the first
// ChangepointRange of the history, on observed time stamps
func (m advancedModel) changepoints(tScaled []float64) []float64 {
	histSize := int(math.Floor(float64(len(tScaled)) * m.options.ChangepointRange))
	count := m.options.Changepoints
	if count+1 > histSize {
		count = histSize - 1
	}
	if count <= 0 {
		return nil
	}

	cps := make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(count)))
		cps = append(cps, tScaled[idx])
	}
	return cps
}

func activeSeasonalities(spanDays float64) []seasonality {
	var active []seasonality
	for _, s := range seasonalities {
		if spanDays >= s.minSpanDays {
			active = append(active, s)
		}
	}
	return active
}

func trendRow(t float64, changepoints []float64) []float64 {
	row := make([]float64, 2+len(changepoints))
	row[0] = 1
	row[1] = t
	for j, c := range changepoints {
		row[2+j] = math.Max(0, t-c)
	}
	return row
}

func trendDesign(tScaled, changepoints []float64) *mat.Dense {
	cols := 2 + len(changepoints)
	x := mat.NewDense(len(tScaled), cols, nil)
	for i, t := range tScaled {
		x.SetRow(i, trendRow(t, changepoints))
	}
	return x
}

func fourierRow(day float64, components []seasonality) []float64 {
	var row []float64
	for _, s := range components {
		for k := 1; k <= s.order; k++ {
			angle := 2 * math.Pi * float64(k) * day / s.period
			row = append(row, math.Sin(angle), math.Cos(angle))
		}
	}
	return row
}

func fourierDesign(days []float64, components []seasonality) *mat.Dense {
	cols := 0
	for _, s := range components {
		cols += 2 * s.order
	}
	x := mat.NewDense(len(days), cols, nil)
	for i, d := range days {
		x.SetRow(i, fourierRow(d, components))
	}
	return x
}

// ridge solves (XᵀX + diag(penalty)) β = Xᵀy by Cholesky factorisation
func ridge(x *mat.Dense, y []float64, penalty []float64) ([]float64, error) {
	rows, cols := x.Dims()
	if len(y) != rows || len(penalty) != cols {
		return nil, fmt.Errorf("shape mismatch: %dx%d design, %d targets, %d penalties", rows, cols, len(y), len(penalty))
	}

	var normal mat.SymDense
	normal.SymOuterK(1, x.T())
	for j := 0; j < cols; j++ {
		normal.SetSym(j, j, normal.At(j, j)+penalty[j])
	}

	var rhs mat.VecDense
	rhs.MulVec(x.T(), mat.NewVecDense(rows, y))

	var chol mat.Cholesky
	if ok := chol.Factorize(&normal); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		// a Condition error still carries a usable solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("cholesky solve: %w", err)
		}
	}

	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}
	if !stats.AllFinite(coef...) {
		return nil, errors.New("non-finite coefficients")
	}
	return coef, nil
}
