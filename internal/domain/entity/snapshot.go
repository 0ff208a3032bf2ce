package entity

import "github.com/shopspring/decimal"

// ProductLevel nivel de stock de un producto en un instante.
// Initial y Reserved permiten verificar I2 sin depender de las respuestas.
type ProductLevel struct {
	ProductID int
	Name      string
	Price     decimal.Decimal
	Initial   int64
	Quantity  int64
	Reserved  int64
}

// Snapshot fotografía del inventario completo, ordenada por ProductID.
// Solo se usa para verificación antes/después, nunca para decidir una reserva.
type Snapshot struct {
	Levels []ProductLevel
}

// Total suma las cantidades de todos los productos.
func (s Snapshot) Total() int64 {
	var total int64
	for _, l := range s.Levels {
		total += l.Quantity
	}
	return total
}

// Level busca el nivel de un producto.
func (s Snapshot) Level(productID int) (ProductLevel, bool) {
	for _, l := range s.Levels {
		if l.ProductID == productID {
			return l, true
		}
	}
	return ProductLevel{}, false
}
