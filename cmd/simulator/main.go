package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/text/language"
	"github.com/jhoicas/inventory-reservation/internal/application/simulation"
	"github.com/jhoicas/inventory-reservation/pkg/config"
	"github.com/jhoicas/inventory-reservation/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("guard", cfg.Sim.Guard).
		Int("trials", cfg.Sim.Trials).
		Msg("iniciando simulación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sc := cfg.Sim.Scenario()

	harness := simulation.NewHarness(log)
	reports, err := harness.RunTrials(ctx, sc, cfg.Sim.Trials)
	if err != nil {
		log.Error().Err(err).Msg("simulación interrumpida")
	}

	failed := 0
	for _, r := range reports {
		r.Print(os.Stdout, language.Spanish)
		os.Stdout.WriteString("\n")
		if !r.OK() {
			failed++
		}
	}

	log.Info().Int("trials", len(reports)).Int("failed", failed).Msg("simulación finalizada")
	if err != nil || failed > 0 {
		os.Exit(1)
	}
}
