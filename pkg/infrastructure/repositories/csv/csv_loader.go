package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/restock/pkg/domain/calendar"
	"github.com/vsinha/restock/pkg/domain/entities"
)

// Loader handles loading restock data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProducts loads product master data from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readAll(filename, "products")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"sku", "description", "current_stock", "lead_time_days", "safety_stock"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("products CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var products []*entities.Product
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("products CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}

	return products, nil
}

// LoadSales loads sales records from a CSV file. The header is either
// sku,date,qty or date,qty; in the second form every row is attributed to
// defaultSKU.
func (l *Loader) LoadSales(filename string, defaultSKU entities.SKU) ([]*entities.SalesRecord, error) {
	records, err := readAll(filename, "sales")
	if err != nil {
		return nil, err
	}

	withSKU := []string{"sku", "date", "qty"}
	withoutSKU := []string{"date", "qty"}

	header := records[0]
	hasSKU := validateHeader(header, withSKU)
	if !hasSKU && !validateHeader(header, withoutSKU) {
		return nil, fmt.Errorf("sales CSV header mismatch. Expected: %v or %v, Got: %v", withSKU, withoutSKU, header)
	}
	if !hasSKU && defaultSKU == "" {
		return nil, fmt.Errorf("sales CSV has no sku column and no SKU was given")
	}

	var sales []*entities.SalesRecord
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("sales CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}

		sku := defaultSKU
		if hasSKU {
			sku = entities.SKU(strings.TrimSpace(record[0]))
			record = record[1:]
		}

		sale, err := parseSale(sku, record)
		if err != nil {
			return nil, fmt.Errorf("sales CSV row %d: %w", i+2, err)
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

// LoadForecast reads the yhat column of a forecast CSV, such as the one the
// forecast command writes. Other columns are ignored.
func (l *Loader) LoadForecast(filename string) ([]float64, error) {
	records, err := readAll(filename, "forecast")
	if err != nil {
		return nil, err
	}

	column := -1
	for i, name := range records[0] {
		if normalize(name) == "yhat" {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, fmt.Errorf("forecast CSV has no yhat column. Got: %v", records[0])
	}

	values := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if column >= len(record) {
			return nil, fmt.Errorf("forecast CSV row %d: missing yhat column", i+2)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: invalid yhat: %s", i+2, record[column])
		}
		values = append(values, v)
	}
	return values, nil
}

// Helper functions for parsing CSV records

func readAll(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	records, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	return records, nil
}

func read(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func normalize(col string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if normalize(actual[i]) != col {
			return false
		}
	}

	return true
}

func parseProduct(record []string) (*entities.Product, error) {
	sku := entities.SKU(strings.TrimSpace(record[0]))
	description := record[1]

	currentStock, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid current_stock: %s", record[2])
	}

	leadTimeDays, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lead_time_days: %s", record[3])
	}

	safetyStock, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid safety_stock: %s", record[4])
	}

	return entities.NewProduct(sku, description, currentStock, leadTimeDays, safetyStock)
}

func parseSale(sku entities.SKU, record []string) (*entities.SalesRecord, error) {
	date, err := calendar.Parse(strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", record[0])
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid qty: %s", record[1])
	}

	return entities.NewSalesRecord(sku, date, qty)
}
