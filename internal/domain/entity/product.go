package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo con su stock disponible.
// Quantity es el único estado mutable compartido; solo cambia dentro de la
// sección crítica del almacén.
type Product struct {
	ID       int
	Name     string
	Price    decimal.Decimal // precio unitario, usado para valorizar lo reservado
	Quantity int64
}
