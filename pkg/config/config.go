package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jhoicas/inventory-reservation/internal/application/simulation"
	"github.com/jhoicas/inventory-reservation/internal/domain"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App AppConfig
	Sim SimConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// SimConfig parámetros del escenario de reservas concurrentes.
type SimConfig struct {
	Products         int     // cantidad de productos del catálogo
	StockMin         int64   // stock inicial mínimo por producto
	StockMax         int64   // stock inicial máximo por producto (inclusivo)
	Instances        int     // instancias de servicio que comparten el almacén
	InstanceCapacity int64   // slots de admisión por instancia
	WorkloadSize     int     // cantidad de pedidos generados
	MaxQuantity      int64   // cantidad máxima por pedido
	Customers        int     // clientes distintos en la carga
	MissingRatio     float64 // fracción de pedidos a productos inexistentes
	MaxParallelism   int     // pedidos en vuelo simultáneos en el dispatcher
	Seed             int64
	Guard            string // sharded, global, none
	Trials           int
}

// Scenario traduce la configuración al escenario del harness.
func (c SimConfig) Scenario() simulation.Scenario {
	return simulation.Scenario{
		Products:         c.Products,
		StockMin:         c.StockMin,
		StockMax:         c.StockMax,
		Instances:        c.Instances,
		InstanceCapacity: c.InstanceCapacity,
		WorkloadSize:     c.WorkloadSize,
		MaxQuantity:      c.MaxQuantity,
		Customers:        c.Customers,
		MissingRatio:     c.MissingRatio,
		MaxParallelism:   c.MaxParallelism,
		Seed:             c.Seed,
		Guard:            c.Guard,
	}
}

// Validate rechaza tamaños no positivos y rangos invertidos. Las reglas del
// escenario son las mismas que aplica el harness.
func (c SimConfig) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("SIM_TRIALS debe ser > 0 (%d): %w", c.Trials, domain.ErrInvalidInput)
	}
	return c.Scenario().Validate()
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, SIM_PRODUCTS, SIM_SEED, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración desde una instancia de Viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventory-reservation"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Sim: SimConfig{
			Products:         getInt(v, "SIM_PRODUCTS", 100),
			StockMin:         int64(getInt(v, "SIM_STOCK_MIN", 0)),
			StockMax:         int64(getInt(v, "SIM_STOCK_MAX", 1000)),
			Instances:        getInt(v, "SIM_INSTANCES", 20),
			InstanceCapacity: int64(getInt(v, "SIM_INSTANCE_CAPACITY", 8)),
			WorkloadSize:     getInt(v, "SIM_WORKLOAD_SIZE", 50000),
			MaxQuantity:      int64(getInt(v, "SIM_MAX_QUANTITY", 10)),
			Customers:        getInt(v, "SIM_CUSTOMERS", 1000),
			MissingRatio:     getFloat(v, "SIM_MISSING_RATIO", 0.01),
			MaxParallelism:   getInt(v, "SIM_MAX_PARALLELISM", 64),
			Seed:             int64(getInt(v, "SIM_SEED", 1)),
			Guard:            strings.ToLower(getString(v, "SIM_GUARD", "sharded")),
			Trials:           getInt(v, "SIM_TRIALS", 1),
		},
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, fmt.Errorf("configuración de simulación: %w", err)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return def
			}
			return f
		}
		return v.GetFloat64(key)
	}
	return def
}
