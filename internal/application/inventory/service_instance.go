package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"github.com/jhoicas/inventory-reservation/internal/domain"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
	"github.com/jhoicas/inventory-reservation/pkg/logger"
)

// ServiceInstance modela una réplica de servidor con capacidad finita.
// Todas las instancias comparten el mismo Reserver; la corrección depende
// del guard del almacén, no de cuántas instancias existan.
//
// Los slots de admisión solo limitan concurrencia (backpressure); no aportan
// atomicidad y no se comparten entre instancias.
type ServiceInstance struct {
	id       string
	store    Reserver
	slots    *semaphore.Weighted
	capacity int64
	log      *logger.Logger

	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewServiceInstance construye una instancia con capacity slots de admisión.
func NewServiceInstance(store Reserver, capacity int64, log *logger.Logger) (*ServiceInstance, error) {
	if store == nil {
		return nil, fmt.Errorf("instancia sin almacén: %w", domain.ErrInvalidInput)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("capacidad %d: %w", capacity, domain.ErrInvalidInput)
	}
	if log == nil {
		log = logger.Nop()
	}
	id := uuid.New().String()
	return &ServiceInstance{
		id:       id,
		store:    store,
		slots:    semaphore.NewWeighted(capacity),
		capacity: capacity,
		log:      log.Named("service-instance"),
	}, nil
}

// ID identificador de la instancia.
func (s *ServiceInstance) ID() string { return s.id }

// Capacity cantidad de slots de admisión.
func (s *ServiceInstance) Capacity() int64 { return s.capacity }

// InFlight pedidos dentro del camino crítico en este momento.
func (s *ServiceInstance) InFlight() int64 { return s.inFlight.Load() }

// PeakInFlight máximo observado de pedidos simultáneos; nunca supera Capacity.
func (s *ServiceInstance) PeakInFlight() int64 { return s.peak.Load() }

// PlaceOrder toma un slot de admisión (bloquea si no hay), reserva en el
// almacén y libera el slot antes de volver. No reintenta: el rechazo se
// devuelve tal cual como OrderResponse.
//
// Un error que no sea un rechazo esperado indica un defecto y provoca panic
// tras liberar el slot.
func (s *ServiceInstance) PlaceOrder(ctx context.Context, req entity.OrderRequest) entity.OrderResponse {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return s.reject(req, entity.ReasonCanceled, err)
	}
	err := s.reserve(ctx, req)

	switch {
	case err == nil:
		return entity.Fulfilled(req, s.id)
	case errors.Is(err, domain.ErrNotFound):
		return s.reject(req, entity.ReasonNotFound, err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return s.reject(req, entity.ReasonInsufficientStock, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return s.reject(req, entity.ReasonCanceled, err)
	}
	s.log.Error().Err(err).Str("order_id", req.ID).Int("product_id", req.ProductID).Msg("reserva con error inesperado")
	panic(fmt.Errorf("instancia %s: %s: %w", s.id, req, err))
}

// reserve ejecuta la reserva mientras se retiene el slot.
func (s *ServiceInstance) reserve(ctx context.Context, req entity.OrderRequest) error {
	defer s.slots.Release(1)

	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	return s.store.Reserve(ctx, req.ProductID, req.Quantity)
}

func (s *ServiceInstance) reject(req entity.OrderRequest, reason entity.RejectReason, err error) entity.OrderResponse {
	s.log.Debug().
		Str("order_id", req.ID).
		Int("product_id", req.ProductID).
		Int64("quantity", req.Quantity).
		Str("reason", string(reason)).
		Err(err).
		Msg("pedido rechazado")
	return entity.Rejected(req, s.id, reason)
}
