package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nftmarket/config"
	"nftmarket/native/market"
	"nftmarket/observability/logging"
	"nftmarket/state"
	"nftmarket/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MARKET_ENV"))
	logger := logging.Setup("marketd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	engine, err := buildEngine(cfg, db, logger)
	if err != nil {
		logger.Error("failed to assemble engine", "err", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	if err := market.RegisterMetrics(registry); err != nil {
		logger.Error("failed to register metrics", "err", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/v1/fees", func(w http.ResponseWriter, _ *http.Request) {
		policy := engine.FeePolicy()
		writeJSON(w, map[string]any{
			"rateBps":     policy.RateBps,
			"destination": hex.EncodeToString(policy.Destination[:]),
		})
	})
	router.Get("/v1/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		entry, err := lookupEntry(engine, chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, market.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, entry)
	})

	logger.Info("marketd listening", "addr", cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, router); err != nil {
		logger.Error("http server stopped", "err", err)
		os.Exit(1)
	}
}

func buildEngine(cfg *config.Config, db storage.Database, logger *slog.Logger) (*market.Engine, error) {
	marketState := state.NewMarketState(db)

	vaultAddr, err := config.ParseAddress(cfg.VaultAddress)
	if err != nil {
		return nil, fmt.Errorf("vault address: %w", err)
	}
	policy, err := cfg.FeePolicy()
	if err != nil {
		return nil, fmt.Errorf("fee policy: %w", err)
	}
	gate, err := cfg.Gate()
	if err != nil {
		return nil, fmt.Errorf("access gate: %w", err)
	}

	engine := market.NewEngine()
	engine.SetState(marketState)
	engine.SetVault(state.NewVault(marketState, vaultAddr))
	engine.SetCustodian(state.NewAssetBook(marketState, vaultAddr))
	engine.SetAccessGate(gate)
	engine.SetPauses(cfg.Pauses())
	engine.SetLogger(logger)
	if err := engine.SetFeePolicy(policy); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.AdminAddress) != "" {
		admin, err := config.ParseAddress(cfg.AdminAddress)
		if err != nil {
			return nil, fmt.Errorf("admin address: %w", err)
		}
		engine.SetAdmin(admin)
	}
	return engine, nil
}

func lookupEntry(engine *market.Engine, idParam string) (*market.Entry, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(idParam, "0x"))
	if err != nil || len(decoded) != 32 {
		return nil, market.ErrNotFound
	}
	var id [32]byte
	copy(id[:], decoded)
	return engine.Entry(id)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
