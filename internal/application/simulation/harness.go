package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jhoicas/inventory-reservation/internal/application/inventory"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
	"github.com/jhoicas/inventory-reservation/internal/domain/repository"
	"github.com/jhoicas/inventory-reservation/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-reservation/pkg/logger"
)

// Harness arma almacén e instancias, despacha la carga y verifica invariantes.
type Harness struct {
	log       *logger.Logger
	storeOpts []memory.Option
}

// HarnessOption configura el Harness.
type HarnessOption func(*Harness)

// WithStoreOptions agrega opciones al almacén de cada corrida (hooks de prueba).
func WithStoreOptions(opts ...memory.Option) HarnessOption {
	return func(h *Harness) { h.storeOpts = append(h.storeOpts, opts...) }
}

// NewHarness construye el harness.
func NewHarness(log *logger.Logger, opts ...HarnessOption) *Harness {
	if log == nil {
		log = logger.Nop()
	}
	h := &Harness{log: log.Named("harness")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run genera catálogo y carga desde la semilla del escenario y los ejecuta.
func (h *Harness) Run(ctx context.Context, sc Scenario) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}
	rng := rand.New(rand.NewSource(sc.Seed))
	catalog := BuildCatalog(sc, rng)
	requests, err := GenerateWorkload(sc, rng)
	if err != nil {
		return Report{}, err
	}
	return h.RunWorkload(ctx, sc, catalog, requests)
}

// RunWorkload ejecuta una carga explícita sobre un catálogo explícito.
// Cada llamada usa su propio almacén: escenarios independientes no comparten estado.
func (h *Harness) RunWorkload(ctx context.Context, sc Scenario, catalog []entity.Product, requests []entity.OrderRequest) (Report, error) {
	if err := sc.validateExecution(); err != nil {
		return Report{}, err
	}
	guard, err := memory.NewGuard(sc.Guard)
	if err != nil {
		return Report{}, err
	}
	opts := append([]memory.Option{memory.WithGuard(guard)}, h.storeOpts...)
	memStore, err := memory.NewStore(catalog, opts...)
	if err != nil {
		return Report{}, fmt.Errorf("crear almacén: %w", err)
	}
	var store repository.StockRepository = memStore

	instances := make([]*inventory.ServiceInstance, 0, sc.Instances)
	placers := make([]OrderPlacer, 0, sc.Instances)
	for i := 0; i < sc.Instances; i++ {
		inst, err := inventory.NewServiceInstance(store, sc.InstanceCapacity, h.log)
		if err != nil {
			return Report{}, fmt.Errorf("crear instancia %d: %w", i, err)
		}
		instances = append(instances, inst)
		placers = append(placers, inst)
	}

	var router Router = NewHashRouter(sc.Seed, sc.Instances)
	if sc.RandomRouting {
		router = NewRandomRouter(sc.Instances)
	}
	dispatcher, err := NewDispatcher(placers, router, sc.MaxParallelism)
	if err != nil {
		return Report{}, err
	}

	h.log.Info().
		Str("guard", guardName(sc.Guard)).
		Int64("seed", sc.Seed).
		Int("products", len(catalog)).
		Int("requests", len(requests)).
		Int("instances", sc.Instances).
		Int64("capacity", sc.InstanceCapacity).
		Msg("iniciando escenario")

	// Las fotografías se toman aunque ctx esté cancelado: los pedidos
	// cancelados también se verifican.
	snapCtx := context.WithoutCancel(ctx)
	before, err := store.Snapshot(snapCtx)
	if err != nil {
		return Report{}, fmt.Errorf("fotografía inicial: %w", err)
	}
	start := time.Now()
	responses, err := dispatcher.Run(ctx, requests)
	if err != nil {
		return Report{}, err
	}
	elapsed := time.Since(start)
	after, err := store.Snapshot(snapCtx)
	if err != nil {
		return Report{}, fmt.Errorf("fotografía final: %w", err)
	}

	report := Verify(before, after, requests, responses)
	report.Seed = sc.Seed
	report.Guard = guardName(sc.Guard)
	report.Elapsed = elapsed
	for _, inst := range instances {
		peak := inst.PeakInFlight()
		if peak > report.MaxInFlight {
			report.MaxInFlight = peak
		}
		if peak > inst.Capacity() {
			report.violate("admisión: instancia %s tuvo %d pedidos simultáneos con capacidad %d",
				inst.ID(), peak, inst.Capacity())
		}
	}

	ev := h.log.Info()
	if !report.OK() {
		ev = h.log.Warn().Strs("violations", report.Violations)
	}
	ev.Int64("mismatch", report.Mismatch).
		Int("success", report.SuccessCount).
		Int("failure", report.FailureCount).
		Dur("elapsed", elapsed).
		Msg("escenario finalizado")
	return report, nil
}

// RunTrials repite el escenario n veces con semillas Seed, Seed+1, ...
func (h *Harness) RunTrials(ctx context.Context, sc Scenario, n int) ([]Report, error) {
	reports := make([]Report, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		trial := sc
		trial.Seed = sc.Seed + int64(i)
		r, err := h.Run(ctx, trial)
		if err != nil {
			return reports, fmt.Errorf("prueba %d: %w", i, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func guardName(kind string) string {
	if kind == "" {
		return memory.GuardSharded
	}
	return kind
}
