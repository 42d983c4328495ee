// internal/domain/catalog/seed.go
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed seed/products.json
var seedFS embed.FS

// LoadSeed reads the product dataset from path, or from the embedded
// dataset when path is empty
func LoadSeed(path string) ([]*Product, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = seedFS.ReadFile("seed/products.json")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product seed: %w", err)
	}

	var products []*Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse product seed: %w", err)
	}

	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("product seed %q has invalid id %d", p.Name, p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product seed has duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}

	return products, nil
}
