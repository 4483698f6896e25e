package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/otgo/server/internal/config"
	"github.com/otgo/server/internal/core/event"
	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/data"
	gonet "github.com/otgo/server/internal/net"
	"github.com/otgo/server/internal/persist"
	"github.com/otgo/server/internal/scripting"
	"github.com/otgo/server/internal/system"
	"github.com/otgo/server/internal/world"
)

const (
	saveIntervalTicks = 6000 // 6000 ticks x 50ms = 5 minutes
	maxPacketsPerTick = 32
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("OTGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready")

	playerRepo := persist.NewPlayerRepo(db)
	houseRepo := persist.NewHouseRepo(db)
	journalRepo := persist.NewJournalRepo(db)

	itemTypes, err := data.LoadItemTypes(cfg.World.ItemsFile)
	if err != nil {
		return fmt.Errorf("load item types: %w", err)
	}
	worldFile, err := data.LoadWorldFile(cfg.World.MapFile)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	towns, err := data.LoadTowns(cfg.World.TownsFile)
	if err != nil {
		return fmt.Errorf("load towns: %w", err)
	}
	houses, err := data.LoadHouses(cfg.World.HousesFile)
	if err != nil {
		return fmt.Errorf("load houses: %w", err)
	}

	bus := event.NewBus()
	game := world.NewGame(log, bus, world.NewMap(), itemTypes, world.GameConfig{
		Stacking:      stackingPolicy(cfg.Gameplay.Stacking),
		Swap:          swapPolicy(cfg.Gameplay.Swap),
		DepotLockerID: uint16(cfg.Mail.DepotLockerID),
		MaxDepotItems: cfg.Mail.MaxDepotItems,
		TileItemLimit: cfg.World.TileItemLimit,
	})

	if err := world.BuildWorld(game, worldFile, towns, houses); err != nil {
		return fmt.Errorf("build world: %w", err)
	}
	if err := houseRepo.LoadAll(ctx, game); err != nil {
		return fmt.Errorf("load house state: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	game.SetHooks(engine)
	game.SetDepotResolver(persist.NewOfflineDepots(playerRepo, game.Factory(), cfg.Mail.MaxDepotItems, log))

	maxGUID, err := playerRepo.MaxGUID(ctx)
	if err != nil {
		return fmt.Errorf("query max guid: %w", err)
	}

	netServer, err := gonet.NewServer(cfg.Network.BindAddress, cfg.Network.OutQueueSize, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	broadcastSys := system.NewBroadcastSystem(game, bus)
	persistSys := system.NewPersistenceSystem(game, bus, playerRepo, journalRepo, log, saveIntervalTicks)

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, game, playerRepo, broadcastSys, engine, maxGUID, maxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewDecaySystem(game))
	runner.Register(broadcastSys)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(game))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	log.Info("server ready",
		zap.String("name", cfg.Server.Name),
		zap.String("addr", netServer.Addr().String()),
		zap.Duration("tick", cfg.Server.TickRate))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			persistSys.SaveAllPlayers()
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := houseRepo.SaveAll(saveCtx, game); err != nil {
				log.Error("house save failed", zap.Error(err))
			}
			saveCancel()
			netServer.Shutdown()
			log.Info("server stopped")
			return nil
		}
	}
}

func stackingPolicy(mode string) world.StackingPolicy {
	if mode == "oldschool" {
		return world.StackingOldschool
	}
	return world.StackingModern
}

func swapPolicy(mode string) world.SwapPolicy {
	if mode == "classic" {
		return world.SwapClassic
	}
	return world.SwapModern
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
