package simulation

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

// BuildCatalog genera el catálogo inicial de forma determinista a partir de rng.
// Los IDs van de 0 a Products-1.
func BuildCatalog(sc Scenario, rng *rand.Rand) []entity.Product {
	products := make([]entity.Product, 0, sc.Products)
	span := sc.StockMax - sc.StockMin + 1
	for i := 0; i < sc.Products; i++ {
		products = append(products, entity.Product{
			ID:       i,
			Name:     fmt.Sprintf("Product %d", i),
			Price:    decimal.New(100+rng.Int63n(99_900), -2),
			Quantity: sc.StockMin + rng.Int63n(span),
		})
	}
	return products
}

// GenerateWorkload genera la secuencia ordenada de pedidos. Los productos se
// repiten (contención) y una fracción MissingRatio apunta a IDs fuera del
// catálogo. Los IDs de pedido son UUID derivados de rng, reproducibles por semilla.
func GenerateWorkload(sc Scenario, rng *rand.Rand) ([]entity.OrderRequest, error) {
	requests := make([]entity.OrderRequest, 0, sc.WorkloadSize)
	for i := 0; i < sc.WorkloadSize; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("generar id de pedido %d: %w", i, err)
		}
		productID := rng.Intn(sc.Products)
		if rng.Float64() < sc.MissingRatio {
			productID = sc.Products + rng.Intn(sc.Products)
		}
		requests = append(requests, entity.OrderRequest{
			ID:         id.String(),
			CustomerID: rng.Intn(sc.Customers),
			ProductID:  productID,
			Quantity:   1 + rng.Int63n(sc.MaxQuantity),
		})
	}
	return requests, nil
}
