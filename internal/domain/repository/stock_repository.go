package repository

import (
	"context"

	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

// StockRepository define el puerto del almacén de inventario compartido por
// todas las instancias de servicio. El harness lo consume para reservar a
// través de las instancias y para fotografiar el stock antes y después.
type StockRepository interface {
	// Reserve ejecuta el check-and-decrement atómico de un producto.
	// Devuelve domain.ErrNotFound o domain.ErrInsufficientStock sin cambiar estado.
	Reserve(ctx context.Context, productID int, quantity int64) error
	Get(productID int) (*entity.Product, error)
	// Snapshot solo para reportes y verificación, fuera de la ventana concurrente.
	Snapshot(ctx context.Context) (entity.Snapshot, error)
}
