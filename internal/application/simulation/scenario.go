package simulation

import (
	"fmt"

	"github.com/jhoicas/inventory-reservation/internal/domain"
	"github.com/jhoicas/inventory-reservation/internal/infrastructure/memory"
)

// Scenario parámetros de una corrida. Ver config.SimConfig para su origen.
type Scenario struct {
	Products         int
	StockMin         int64
	StockMax         int64
	Instances        int
	InstanceCapacity int64
	WorkloadSize     int
	MaxQuantity      int64
	Customers        int
	MissingRatio     float64
	MaxParallelism   int
	Seed             int64
	Guard            string
	RandomRouting    bool // true: RandomRouter; false: HashRouter con Seed
}

// Validate verifica todo lo que Run necesita para generar catálogo y carga.
func (sc Scenario) Validate() error {
	switch {
	case sc.Products <= 0:
		return invalid("productos debe ser > 0 (%d)", sc.Products)
	case sc.StockMin < 0 || sc.StockMax < sc.StockMin:
		return invalid("rango de stock inválido [%d, %d]", sc.StockMin, sc.StockMax)
	case sc.WorkloadSize < 0:
		return invalid("tamaño de carga negativo (%d)", sc.WorkloadSize)
	case sc.MaxQuantity <= 0:
		return invalid("cantidad máxima por pedido debe ser > 0 (%d)", sc.MaxQuantity)
	case sc.Customers <= 0:
		return invalid("clientes debe ser > 0 (%d)", sc.Customers)
	case sc.MissingRatio < 0 || sc.MissingRatio > 1:
		return invalid("fracción de faltantes fuera de [0, 1] (%v)", sc.MissingRatio)
	}
	return sc.validateExecution()
}

// validateExecution cubre solo lo necesario para ejecutar una carga ya
// construida (RunWorkload recibe catálogo y pedidos explícitos).
func (sc Scenario) validateExecution() error {
	switch {
	case sc.Instances <= 0:
		return invalid("instancias debe ser > 0 (%d)", sc.Instances)
	case sc.InstanceCapacity <= 0:
		return invalid("capacidad por instancia debe ser > 0 (%d)", sc.InstanceCapacity)
	case sc.MaxParallelism <= 0:
		return invalid("paralelismo máximo debe ser > 0 (%d)", sc.MaxParallelism)
	}
	switch sc.Guard {
	case "", memory.GuardSharded, memory.GuardGlobal, memory.GuardNone:
		return nil
	default:
		return invalid("guard desconocido %q", sc.Guard)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("escenario: %s: %w", fmt.Sprintf(format, args...), domain.ErrInvalidInput)
}
