package inventory

import "context"

// Reserver puerto mínimo que una instancia de servicio necesita del almacén.
// Lo implementa memory.Store; en pruebas se reemplaza por stubs lentos.
type Reserver interface {
	Reserve(ctx context.Context, productID int, quantity int64) error
}
