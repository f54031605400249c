package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/eddiefleurent/wheelhouse/internal/config"
	"github.com/eddiefleurent/wheelhouse/internal/dashboard"
	"github.com/eddiefleurent/wheelhouse/internal/ledger"
	"github.com/eddiefleurent/wheelhouse/internal/models"
	"github.com/eddiefleurent/wheelhouse/internal/storage"
	"github.com/eddiefleurent/wheelhouse/internal/wheel"
)

// App wires the ledger source, engine and storage for one process.
type App struct {
	config *config.Config
	source ledger.Source
	engine *wheel.Engine
	store  storage.Interface
	logger *log.Logger
}

func main() {
	var configPath string
	var once bool
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.BoolVar(&once, "once", false, "Run a single analysis pass, print the summary, and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "[WHEEL] ", log.LstdFlags|log.Lshortfile)

	var source ledger.Source
	if cfg.UsesAPI() {
		logger.Printf("Using brokerage ledger API at %s", cfg.Ledger.API.Endpoint)
		source = ledger.NewClient(cfg.Ledger.API.Endpoint, cfg.Ledger.API.APIKey,
			cfg.Ledger.API.AccountID, logger)
	} else {
		logger.Printf("Using ledger file %s", cfg.Ledger.File.Path)
		source = ledger.NewFileSource(cfg.Ledger.File.Path)
	}

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	app := &App{
		config: cfg,
		source: source,
		engine: wheel.NewEngine(),
		store:  store,
		logger: logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		if err := app.runAnalysis(ctx, true); err != nil {
			logger.Fatalf("Analysis failed: %v", err)
		}
		return
	}

	if err := app.run(ctx); err != nil {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Stopped")
}

// run starts the refresh loop and, when enabled, the dashboard server, and
// blocks until a shutdown signal or a fatal component error.
func (a *App) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.config.Dashboard.Enabled {
		srvLogger := logrus.New()
		if lvl, err := logrus.ParseLevel(a.config.Environment.LogLevel); err == nil {
			srvLogger.SetLevel(lvl)
		}
		server := dashboard.NewServer(dashboard.Config{
			Port:      a.config.Dashboard.Port,
			AuthToken: a.config.Dashboard.AuthToken,
		}, a.store, srvLogger)

		g.Go(func() error {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("dashboard server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(a.config.GetRefreshInterval())
		defer ticker.Stop()

		// Run immediately on start
		if err := a.runAnalysis(ctx, false); err != nil {
			a.logger.Printf("Analysis failed: %v", err)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := a.runAnalysis(ctx, false); err != nil {
					a.logger.Printf("Analysis failed: %v", err)
				}
			}
		}
	})

	return g.Wait()
}

// runAnalysis fetches the ledger, runs one engine pass, persists the
// snapshot, and optionally prints the summary.
func (a *App) runAnalysis(ctx context.Context, print bool) error {
	trades, err := a.source.Trades(ctx)
	if err != nil {
		return fmt.Errorf("fetching ledger: %w", err)
	}
	trades = a.filterSymbols(trades)

	result := a.engine.Analyze(trades, time.Now().UTC())
	snap := snapshotFrom(result)

	if err := a.store.SetLatest(snap); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}

	summary := snap.Summary
	a.logger.Printf("Analyzed %d trades across %d symbols: %d completed cycles, %d active, premium %s, net profit %s",
		len(trades), summary.Symbols, summary.CompletedCycles, summary.ActiveCycles,
		summary.PremiumCollected.StringFixed(2), summary.CycleNetProfit.StringFixed(2))
	for _, warn := range result.Report().Warnings {
		a.logger.Printf("warning [%s] %s: %s", warn.Kind, warn.Symbol, warn.Message)
	}

	if print {
		printSummary(result)
	}
	return nil
}

func (a *App) filterSymbols(trades []models.Trade) []models.Trade {
	if len(a.config.Engine.Symbols) == 0 {
		return trades
	}
	filtered := trades[:0:0]
	for _, t := range trades {
		if a.config.SymbolAllowed(t.UnderlyingSymbol()) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func snapshotFrom(result *wheel.Result) *storage.Snapshot {
	return &storage.Snapshot{
		GeneratedAt:     result.GeneratedAt(),
		Summary:         result.Summary(),
		Positions:       result.Positions(),
		ActiveCycles:    result.ActiveCycles(),
		CompletedCycles: result.CompletedCycles(),
		OpenLegs:        result.ActiveOptionLegs(),
		Warnings:        result.Report().Warnings,
	}
}

func printSummary(result *wheel.Result) {
	s := result.Summary()
	fmt.Printf("\nWheel analysis as of %s\n", s.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("  Symbols:          %d\n", s.Symbols)
	fmt.Printf("  Completed cycles: %d (%d wins / %d losses, %.1f%% win rate)\n",
		s.CompletedCycles, s.WinningCycles, s.LosingCycles, s.WinRate)
	fmt.Printf("  Active cycles:    %d\n", s.ActiveCycles)
	fmt.Printf("  Premium:          %s\n", s.PremiumCollected.StringFixed(2))
	fmt.Printf("  Fees:             %s\n", s.TotalFees.StringFixed(2))
	fmt.Printf("  Cycle net profit: %s\n", s.CycleNetProfit.StringFixed(2))
	fmt.Printf("  Realized P&L:     %s\n", s.RealizedPnL.StringFixed(2))

	for sym, pos := range result.Positions() {
		if !pos.HasShares() {
			continue
		}
		line := fmt.Sprintf("  %s: %d shares @ %s avg cost", sym, pos.Quantity, pos.AverageCost.StringFixed(2))
		if price, ok := result.LatestTradePrice(sym); ok {
			line += fmt.Sprintf(" (last trade %s)", price.StringFixed(2))
		}
		if pos.CostBasisUnreliable {
			line += " [cost basis unreliable]"
		}
		fmt.Println(line)
	}
}
