package testing

import (
	"time"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/memory"
)

// ScenarioStart is a Monday, so weekly patterns built from it start on a full week
var ScenarioStart = calendar.MustNew(2024, time.January, 1)

// WeeklyPattern builds days of history from start where Saturdays and Sundays
// sell weekend units and every other day sells weekday units
func WeeklyPattern(start calendar.Date, days int, weekday, weekend float64) []entities.TimeSeriesPoint {
	series := make([]entities.TimeSeriesPoint, days)
	for i := range series {
		date := start.AddDays(i)
		qty := weekday
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			qty = weekend
		}
		series[i] = entities.TimeSeriesPoint{Date: date, Quantity: qty}
	}
	return series
}

// ConstantSeries builds days of history from start with the same quantity every day
func ConstantSeries(start calendar.Date, days int, qty float64) []entities.TimeSeriesPoint {
	return WeeklyPattern(start, days, qty, qty)
}

// SalesRecords attributes a series to sku
func SalesRecords(sku entities.SKU, series []entities.TimeSeriesPoint) []*entities.SalesRecord {
	records := make([]*entities.SalesRecord, len(series))
	for i, p := range series {
		records[i] = &entities.SalesRecord{SKU: sku, Date: p.Date, Quantity: p.Quantity}
	}
	return records
}

// BuildRetailTestData builds the two-SKU shop used across the integration tests:
//
//	TSHIRT-M  weekdays 10, weekends 20, stock 40, lead 7, safety 5  (restock now)
//	MUG-01    flat 3 a day, stock 500, lead 14, safety 10           (well stocked)
//
// Both carry four weeks of history starting at ScenarioStart.
func BuildRetailTestData() (*memory.ProductRepository, *memory.SalesRepository) {
	productRepo := memory.NewProductRepository(2)
	salesRepo := memory.NewSalesRepository()

	products := []*entities.Product{
		{
			SKU:          "TSHIRT-M",
			Description:  "Cotton T-shirt, size M",
			CurrentStock: 40,
			LeadTimeDays: 7,
			SafetyStock:  5,
		},
		{
			SKU:          "MUG-01",
			Description:  "Ceramic mug",
			CurrentStock: 500,
			LeadTimeDays: 14,
			SafetyStock:  10,
		},
	}
	if err := productRepo.LoadProducts(products); err != nil {
		panic(err)
	}

	records := SalesRecords("TSHIRT-M", WeeklyPattern(ScenarioStart, 28, 10, 20))
	records = append(records, SalesRecords("MUG-01", ConstantSeries(ScenarioStart, 28, 3))...)
	if err := salesRepo.LoadSales(records); err != nil {
		panic(err)
	}

	return productRepo, salesRepo
}
