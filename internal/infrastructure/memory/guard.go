package memory

import (
	"context"
	"fmt"
	"sync"
)

// Tipos de guard soportados (SIM_GUARD).
const (
	GuardSharded = "sharded"
	GuardGlobal  = "global"
	GuardNone    = "none"
)

// Guard ejecuta fn en exclusión mutua respecto de otras ejecuciones sobre el
// mismo producto. Libera el lock en toda salida, incluido un panic de fn.
type Guard interface {
	Run(ctx context.Context, productID int, fn func() error) error
}

// NewGuard construye el guard según su nombre de configuración.
func NewGuard(kind string) (Guard, error) {
	switch kind {
	case GuardSharded, "":
		return NewShardedGuard(), nil
	case GuardGlobal:
		return NewGlobalGuard(), nil
	case GuardNone:
		return NoGuard{}, nil
	}
	return nil, fmt.Errorf("guard desconocido %q (sharded|global|none)", kind)
}

// lock exclusión mutua cancelable: un canal con capacidad 1.
type lock chan struct{}

func newLock() lock { return make(lock, 1) }

func (l lock) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l lock) release() { <-l }

func (l lock) run(ctx context.Context, fn func() error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()
	return fn()
}

// ShardedGuard un lock por producto; productos distintos no se serializan.
type ShardedGuard struct {
	locks sync.Map // productID -> lock
}

// NewShardedGuard construye el guard por producto (por defecto).
func NewShardedGuard() *ShardedGuard {
	return &ShardedGuard{}
}

// Run adquiere el lock del producto, ejecuta fn y lo libera.
func (g *ShardedGuard) Run(ctx context.Context, productID int, fn func() error) error {
	l, ok := g.locks.Load(productID)
	if !ok {
		l, _ = g.locks.LoadOrStore(productID, newLock())
	}
	return l.(lock).run(ctx, fn)
}

// GlobalGuard un único lock para todo el almacén. Correcto pero serializa
// también productos independientes.
type GlobalGuard struct {
	l lock
}

// NewGlobalGuard construye el guard global.
func NewGlobalGuard() *GlobalGuard {
	return &GlobalGuard{l: newLock()}
}

// Run adquiere el lock global, ejecuta fn y lo libera.
func (g *GlobalGuard) Run(ctx context.Context, _ int, fn func() error) error {
	return g.l.run(ctx, fn)
}

// NoGuard no provee exclusión. Solo para reproducir la pérdida de
// actualizaciones en pruebas; nunca usar en una simulación real.
type NoGuard struct{}

// Run ejecuta fn directamente.
func (NoGuard) Run(ctx context.Context, _ int, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
