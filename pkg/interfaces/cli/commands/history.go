package commands

import (
	"fmt"
	"strings"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/restock/pkg/infrastructure/repositories/memory"
)

// singleSKU labels history files that carry no sku column
const singleSKU entities.SKU = "SKU"

// loadHistory reads a sales CSV into daily totals for one SKU. When sku is
// empty the file must hold exactly one SKU, which is then used.
func loadHistory(filename string, sku entities.SKU) (entities.SKU, *memory.SalesRepository, error) {
	if filename == "" {
		return "", nil, fmt.Errorf("--history is required")
	}

	defaultSKU := sku
	if defaultSKU == "" {
		defaultSKU = singleSKU
	}
	records, err := csv.NewLoader().LoadSales(filename, defaultSKU)
	if err != nil {
		return "", nil, fmt.Errorf("error loading sales history: %w", err)
	}

	salesRepo := memory.NewSalesRepository()
	if err := salesRepo.LoadSales(records); err != nil {
		return "", nil, fmt.Errorf("failed to load sales into repository: %w", err)
	}

	if sku == "" {
		skus := salesRepo.GetSKUs()
		if len(skus) != 1 {
			names := make([]string, len(skus))
			for i, s := range skus {
				names[i] = string(s)
			}
			return "", nil, fmt.Errorf("history holds %d SKUs (%s), pick one with --sku", len(skus), strings.Join(names, ", "))
		}
		sku = skus[0]
	}
	return sku, salesRepo, nil
}
