package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-reservation/internal/infrastructure/memory"
)

// hold retiene el guard del producto hasta que se cierre release.
func hold(t *testing.T, g memory.Guard, productID int) (release func()) {
	t.Helper()
	entered := make(chan struct{})
	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Run(context.Background(), productID, func() error {
			close(entered)
			<-stop
			return nil
		})
	}()
	<-entered
	return func() {
		close(stop)
		<-done
	}
}

func TestNewGuard(t *testing.T) {
	g, err := memory.NewGuard("")
	require.NoError(t, err)
	assert.IsType(t, &memory.ShardedGuard{}, g)

	g, err = memory.NewGuard(memory.GuardGlobal)
	require.NoError(t, err)
	assert.IsType(t, &memory.GlobalGuard{}, g)

	g, err = memory.NewGuard(memory.GuardNone)
	require.NoError(t, err)
	assert.IsType(t, memory.NoGuard{}, g)

	_, err = memory.NewGuard("optimistic")
	assert.Error(t, err)
}

// Un panic dentro de la sección crítica se propaga y el lock queda libre.
func TestGuard_LiberaTrasPanic(t *testing.T) {
	for _, g := range []memory.Guard{memory.NewShardedGuard(), memory.NewGlobalGuard()} {
		assert.Panics(t, func() {
			_ = g.Run(context.Background(), 1, func() error { panic("defecto") })
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := g.Run(ctx, 1, func() error { return nil })
		cancel()
		assert.NoError(t, err, "%T debe liberar el lock después del panic", g)
	}
}

// Una reserva cancelada mientras espera el guard no toca el almacén.
func TestStore_Reserve_CanceladaEsperandoGuard(t *testing.T) {
	g := memory.NewShardedGuard()
	s := newStore(t, []memory.Option{memory.WithGuard(g)}, 10)

	release := hold(t, g, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Reserve(ctx, 1, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	l, _ := snapshot(t, s).Level(1)
	assert.Equal(t, int64(10), l.Quantity)
	assert.Zero(t, l.Reserved)
}

func TestStore_Reserve_ContextoYaCancelado(t *testing.T) {
	for _, kind := range []string{memory.GuardSharded, memory.GuardGlobal, memory.GuardNone} {
		g, err := memory.NewGuard(kind)
		require.NoError(t, err)
		s := newStore(t, []memory.Option{memory.WithGuard(g)}, 10)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, s.Reserve(ctx, 1, 1), context.Canceled, kind)
		assert.Equal(t, int64(10), quantity(t, s, 1), kind)
	}
}

// El guard por producto no serializa productos distintos; el global sí.
func TestGuard_ProductosIndependientes(t *testing.T) {
	sharded := memory.NewShardedGuard()
	release := hold(t, sharded, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	err := sharded.Run(ctx, 2, func() error { return nil })
	cancel()
	release()
	assert.NoError(t, err, "producto 2 no debe esperar al producto 1")

	global := memory.NewGlobalGuard()
	release = hold(t, global, 1)
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	err = global.Run(ctx, 2, func() error { return nil })
	cancel()
	release()
	assert.ErrorIs(t, err, context.DeadlineExceeded, "el guard global serializa todo el almacén")
}

// Una fotografía que no consigue el guard devuelve el error en lugar de
// omitir el producto.
func TestStore_Snapshot_CanceladaEsperandoGuard(t *testing.T) {
	g := memory.NewShardedGuard()
	s := newStore(t, []memory.Option{memory.WithGuard(g)}, 10, 20)

	release := hold(t, g, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Snapshot(ctx)
	release()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, snapshot(t, s).Levels, 2)
}
