package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tower-server/internal/agent"
	"tower-server/internal/domain"
	"tower-server/internal/engine"
	"tower-server/internal/infrastructure/storage"
	"tower-server/internal/network"
	"tower-server/internal/scene"
	"tower-server/internal/server"
	"tower-server/internal/tui"
	"tower-server/internal/version"
	"tower-server/pkg/dungeon"
	"tower-server/pkg/logger"
	"tower-server/pkg/utils"

	"github.com/sirupsen/logrus"
)

// botIdle - через сколько без снимков автоигрок повторяет решение.
const botIdle = 500 * time.Millisecond

// tuiLogFile - куда уходят логи, пока терминал занят игрой.
const tuiLogFile = "tower.log"

func init() {
	logger.Init()
}

func main() {
	// 1. Флаги поверх конфига
	var (
		seed       int64
		configPath string
		region     string
		defsPath   string
		sessionID  string
		replayPath string
		useTUI     bool
		useBot     bool
	)
	flag.Int64Var(&seed, "seed", 0, "Master seed (0 - from config or random)")
	flag.StringVar(&configPath, "config", "", "Path to YAML config")
	flag.StringVar(&region, "region", "", "Start region (file name in regionPath or gen:<name>)")
	flag.StringVar(&defsPath, "defs", "", "Object definitions file (.json, .yaml, .lua)")
	flag.StringVar(&sessionID, "session", "", "Resume saved session by ID")
	flag.StringVar(&replayPath, "replay", "", "Path to .twrp replay file to simulate")
	flag.BoolVar(&useTUI, "tui", false, "Play locally in the terminal instead of serving WebSocket")
	flag.BoolVar(&useBot, "bot", false, "Let the built-in agent play (WebSocket mode only)")
	flag.Parse()

	logger.Log.Info("Starting Tower...")
	logger.Log.Info(version.String())

	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if region != "" {
		cfg.StartRegion = region
	}
	if defsPath != "" {
		cfg.DefinitionsPath = defsPath
	}

	defs := dungeon.DefaultDefinitions()
	if cfg.DefinitionsPath != "" {
		if defs, err = dungeon.LoadDefinitions(cfg.DefinitionsPath); err != nil {
			logger.Log.WithError(err).Fatal("Failed to load object definitions")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replays := storage.NewReplayService(cfg.ReplayDir)

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		logger.Log.Info("💿 Mode: Replay Simulation")
		if err := runReplay(ctx, cfg, defs, replays, replayPath); err != nil {
			logger.Log.WithError(err).Fatal("Replay failed")
		}
		return
	}

	// 2. Хранилище сохранений и состояние сессии
	store, err := storage.Open(cfg.StoreKind, cfg.StorePath, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open session store")
	}
	defer store.Close()

	state := &domain.SessionState{ID: utils.GenerateID(), Seed: cfg.Seed}
	if sessionID != "" {
		loaded, err := store.Load(ctx, sessionID)
		switch {
		case err == nil:
			state = loaded
			cfg.Seed = loaded.Seed
			logger.Log.WithField("session", sessionID).Info("Session resumed")
		case errors.Is(err, storage.ErrSessionNotFound):
			state.ID = sessionID
			logger.Log.WithField("session", sessionID).Warn("Saved session not found, starting new")
		default:
			logger.Log.WithError(err).Fatal("Failed to load session")
		}
	}
	logger.Log.Infof("🎲 Master Seed: %d", cfg.Seed)

	// 3. Сцена, контроллер, сессия
	world := scene.New(sceneOptions(cfg))
	loader := dungeon.NewRegionLoader(cfg.RegionPath, cfg.Seed)
	controller := engine.NewController(cfg, world, loader, store, defs, state)
	world.SetListener(controller.HandleMessage)

	hub := network.NewBroadcaster()
	session := engine.NewSession(cfg, world, controller, hub)
	if err := session.Start(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to start session")
	}

	// 4. Фронтенд: терминал или WebSocket
	if useTUI {
		runTUI(ctx, cfg, session, world)
	} else {
		if useBot {
			bot := agent.NewBot("bot-"+state.ID, session, hub, cfg.Seed, botIdle)
			go bot.Run(ctx)
		}
		runServer(ctx, cfg, session, hub)
	}

	logger.Log.Info("Shutting down...")

	// Сохраняем сессию и реплей
	if err := controller.Checkpoint(context.Background()); err != nil {
		logger.Log.WithError(err).Warn("Final checkpoint failed")
	}
	if path, err := replays.Save(session.Replay()); err != nil {
		logger.Log.WithError(err).Error("Failed to save replay")
	} else {
		logger.Log.WithField("path", path).Info("Replay saved")
	}

	logger.Log.Info("Done.")
}

func sceneOptions(cfg engine.Config) scene.Options {
	opts := scene.DefaultOptions()
	opts.MoveDuration = cfg.MoveDuration
	return opts
}

// runServer крутит кадровый цикл и HTTP до отмены ctx.
// Возвращается только после остановки цикла сессии.
func runServer(ctx context.Context, cfg engine.Config, session *engine.Session, hub *network.Broadcaster) {
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Session loop stopped")
		}
	}()

	srv := server.New(session, hub, cfg.Addr)
	if err := srv.Run(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Server start error")
	}
	<-loopDone
}

// runTUI - локальная игра. Логи уходят в файл, чтобы не портить экран.
func runTUI(ctx context.Context, cfg engine.Config, session *engine.Session, world *scene.Scene) {
	restore, err := logger.RedirectToFile(tuiLogFile)
	if err != nil {
		logger.Log.WithError(err).Warn("Cannot open TUI log file, logs will mix with the screen")
	}
	defer restore()

	if err := tui.Run(ctx, cfg, session, world); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).Error("TUI stopped")
	}
}

// runReplay пересимулирует запись с тем же сидом и стартовым порталом.
func runReplay(ctx context.Context, cfg engine.Config, defs dungeon.Definitions, replays *storage.ReplayService, path string) error {
	rec, err := replays.Load(path)
	if err != nil {
		return err
	}
	cfg.Seed = rec.Seed

	state := rec.SessionState("replay")

	world := scene.New(sceneOptions(cfg))
	controller := engine.NewController(cfg, world, dungeon.NewRegionLoader(cfg.RegionPath, rec.Seed), nil, defs, state)
	world.SetListener(controller.HandleMessage)

	session := engine.NewSession(cfg, world, controller, nil)
	if err := session.Start(); err != nil {
		return err
	}

	// Две секунды после последней команды: доиграть анимации и переходы
	if err := session.Play(ctx, rec, 2*cfg.FrameRate); err != nil {
		return err
	}

	fields := logrus.Fields{
		"frames": session.Frame(),
		"region": controller.Region().Name,
		"room":   controller.LevelPosition(),
	}
	if p := controller.Player(); p != nil {
		fields["hp"] = p.Health
		fields["ammo"] = p.Ammo
		fields["cell"] = p.Cell()
	}
	logger.Log.WithFields(fields).Info("Replay result")
	return nil
}
