package memory

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/inventory-reservation/internal/domain"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
	"github.com/jhoicas/inventory-reservation/internal/domain/repository"
)

var _ repository.StockRepository = (*Store)(nil)

// stockSlot estado de un producto. quantity se lee y escribe en pasos
// separados (Load/Store): la atomicidad del check-and-decrement la da el Guard.
type stockSlot struct {
	id       int
	name     string
	price    decimal.Decimal
	initial  int64
	quantity atomic.Int64
	reserved atomic.Int64 // acumulado concedido, para verificar I2
}

// Store almacén de inventario en memoria, fuente única de verdad del stock.
// El mapa de slots no se escribe después de NewStore.
type Store struct {
	slots      map[int]*stockSlot
	ids        []int
	guard      Guard
	afterCheck func(productID int)
	observer   func(productID int, quantity int64)
}

// Option configura el Store.
type Option func(*Store)

// WithGuard reemplaza el guard por defecto (ShardedGuard).
func WithGuard(g Guard) Option {
	return func(s *Store) { s.guard = g }
}

// WithAfterCheck registra un hook que corre entre la verificación de stock y
// la escritura. Usado en pruebas para forzar intercalados.
func WithAfterCheck(fn func(productID int)) Option {
	return func(s *Store) { s.afterCheck = fn }
}

// WithObserver registra un hook que recibe la cantidad tras cada escritura.
func WithObserver(fn func(productID int, quantity int64)) Option {
	return func(s *Store) { s.observer = fn }
}

// NewStore construye el almacén con el catálogo inicial.
func NewStore(products []entity.Product, opts ...Option) (*Store, error) {
	s := &Store{
		slots: make(map[int]*stockSlot, len(products)),
		ids:   make([]int, 0, len(products)),
		guard: NewShardedGuard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range products {
		if p.Quantity < 0 {
			return nil, fmt.Errorf("producto %d con cantidad negativa: %w", p.ID, domain.ErrInvalidInput)
		}
		if _, dup := s.slots[p.ID]; dup {
			return nil, fmt.Errorf("producto %d duplicado: %w", p.ID, domain.ErrInvalidInput)
		}
		slot := &stockSlot{id: p.ID, name: p.Name, price: p.Price, initial: p.Quantity}
		slot.quantity.Store(p.Quantity)
		s.slots[p.ID] = slot
		s.ids = append(s.ids, p.ID)
	}
	sort.Ints(s.ids)
	return s, nil
}

// Reserve busca el producto, verifica stock y descuenta dentro del guard.
// En cualquier rechazo el almacén queda sin cambios.
func (s *Store) Reserve(ctx context.Context, productID int, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("reservar %d unidades: %w", quantity, domain.ErrInvalidInput)
	}
	slot, ok := s.slots[productID]
	if !ok {
		return domain.ErrNotFound
	}
	return s.guard.Run(ctx, productID, func() error {
		current := slot.quantity.Load()
		if quantity > current {
			return domain.ErrInsufficientStock
		}
		if s.afterCheck != nil {
			s.afterCheck(productID)
		}
		slot.quantity.Store(current - quantity)
		slot.reserved.Add(quantity)
		if s.observer != nil {
			s.observer(productID, slot.quantity.Load())
		}
		return nil
	})
}

// Get devuelve una copia del producto con su stock actual.
func (s *Store) Get(productID int) (*entity.Product, error) {
	slot, ok := s.slots[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entity.Product{
		ID:       slot.id,
		Name:     slot.name,
		Price:    slot.price,
		Quantity: slot.quantity.Load(),
	}, nil
}

// Snapshot lee cada producto bajo su guard, ordenado por ID. Falla si ctx
// se cancela mientras espera algún guard.
func (s *Store) Snapshot(ctx context.Context) (entity.Snapshot, error) {
	levels := make([]entity.ProductLevel, 0, len(s.ids))
	for _, id := range s.ids {
		slot := s.slots[id]
		err := s.guard.Run(ctx, id, func() error {
			levels = append(levels, entity.ProductLevel{
				ProductID: slot.id,
				Name:      slot.name,
				Price:     slot.price,
				Initial:   slot.initial,
				Quantity:  slot.quantity.Load(),
				Reserved:  slot.reserved.Load(),
			})
			return nil
		})
		if err != nil {
			return entity.Snapshot{}, fmt.Errorf("fotografía del producto %d: %w", id, err)
		}
	}
	return entity.Snapshot{Levels: levels}, nil
}

// Len cantidad de productos en el catálogo.
func (s *Store) Len() int {
	return len(s.ids)
}
