package simulation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"github.com/jhoicas/inventory-reservation/internal/domain"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

// OrderPlacer lo que el dispatcher necesita de una instancia de servicio.
type OrderPlacer interface {
	ID() string
	PlaceOrder(ctx context.Context, req entity.OrderRequest) entity.OrderResponse
}

// Dispatcher reparte los pedidos entre instancias y los ejecuta concurrentemente
// con a lo sumo maxParallelism en vuelo.
type Dispatcher struct {
	instances      []OrderPlacer
	router         Router
	maxParallelism int
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(instances []OrderPlacer, router Router, maxParallelism int) (*Dispatcher, error) {
	if len(instances) == 0 || router == nil || maxParallelism <= 0 {
		return nil, fmt.Errorf("dispatcher: instancias=%d parallelism=%d: %w",
			len(instances), maxParallelism, domain.ErrInvalidInput)
	}
	return &Dispatcher{instances: instances, router: router, maxParallelism: maxParallelism}, nil
}

// Run envía cada pedido a la instancia elegida por el router. La respuesta i
// corresponde al pedido i y se escribe exactamente una vez.
func (d *Dispatcher) Run(ctx context.Context, requests []entity.OrderRequest) ([]entity.OrderResponse, error) {
	responses := make([]entity.OrderResponse, len(requests))

	var g errgroup.Group
	g.SetLimit(d.maxParallelism)
	for i, req := range requests {
		g.Go(func() error {
			idx := d.router.Route(i, req)
			if idx < 0 || idx >= len(d.instances) {
				return fmt.Errorf("router devolvió instancia %d de %d", idx, len(d.instances))
			}
			responses[i] = d.instances[idx].PlaceOrder(ctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	return responses, nil
}
