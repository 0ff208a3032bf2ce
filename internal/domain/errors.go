package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// ErrNotFound y ErrInsufficientStock son resultados esperados de una reserva,
// no fallas del sistema: la capa de aplicación los traduce a OrderResponse.
var (
	ErrNotFound          = errors.New("producto no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidInput      = errors.New("entrada inválida")
)
