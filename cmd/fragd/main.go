package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fragd/server/internal/config"
	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/data"
	"github.com/fragd/server/internal/monster"
	"github.com/fragd/server/internal/persist"
	"github.com/fragd/server/internal/savegame"
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName, level string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               fragd  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        arena simulation core in Go        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(level: %s)\033[0m\n\n", serverName, level)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path("config/server.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load data tables
	printSection("data")
	templates, err := data.LoadMonsterTable(cfg.Data.MonsterList)
	if err != nil {
		return fmt.Errorf("monster table: %w", err)
	}
	printStat("monster templates", templates.Count())
	causes, err := data.LoadCauseTable(cfg.Data.CauseList)
	if err != nil {
		return fmt.Errorf("cause table: %w", err)
	}
	printStat("means of death", causes.Count())
	armor, err := data.LoadArmorTable(cfg.Data.ArmorList)
	if err != nil {
		return fmt.Errorf("armor table: %w", err)
	}
	printOK("armor coefficients")
	maps, err := data.LoadMapData(cfg.Data.MapList, cfg.Data.MapDir)
	if err != nil {
		return fmt.Errorf("map data: %w", err)
	}
	printStat("levels", maps.Count())

	lvl := maps.First()
	if cfg.Server.Map != "" {
		lvl = maps.Get(cfg.Server.Map)
	}
	if lvl == nil {
		return fmt.Errorf("level %q not found", cfg.Server.Map)
	}
	printBanner(cfg.Server.Name, lvl.Info.Name)

	var lua *scripting.Engine
	if cfg.Features.Scripting {
		lua, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer lua.Close()
		printStat("scripted frame events", len(lua.FrameEvents()))
	}
	fmt.Println()

	// 4. Build the simulation context
	printSection("simulation")
	c := newContext(cfg, lvl, log)
	c.Armor = armor
	c.Causes = causes
	if err := system.Register(c.Registry); err != nil {
		return fmt.Errorf("register engine behaviors: %w", err)
	}
	roster, err := monster.Register(c, templates, lua)
	if err != nil {
		return err
	}
	printStat("behaviors: moves", c.Registry.Move.Len())
	printStat("behaviors: classes", c.Registry.Class.Len())

	// 5. Save store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, err := persist.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	if store != nil {
		defer store.Close()
		printOK(fmt.Sprintf("save store (%s)", cfg.Database.Driver))
	}

	// 6. Populate the level
	restored := false
	if store != nil && cfg.Database.Resume {
		snap, err := store.Latest(ctx, lvl.Info.Name)
		switch {
		case errors.Is(err, persist.ErrNotFound):
			log.Info("no snapshot to resume", zap.String("level", lvl.Info.Name))
		case err != nil:
			return fmt.Errorf("resume: %w", err)
		default:
			n, err := savegame.Restore(c, snap)
			if err != nil {
				return fmt.Errorf("resume: %w", err)
			}
			printStat("objects restored", n)
			restored = true
		}
	}
	if !restored {
		n, err := roster.SpawnLevel(c, lvl.Spawns)
		if err != nil {
			return fmt.Errorf("spawn level: %w", err)
		}
		printStat("monsters spawned", n)
	}
	fmt.Println()

	// 7. Create systems and register with runner
	runner := coresys.NewRunner()
	for _, s := range system.Systems(c) {
		runner.Register(s)
	}
	runner.WatchPhases(cfg.Simulation.TickRate/2, func(p coresys.Phase, took time.Duration) {
		log.Warn("slow phase", zap.Stringer("phase", p), zap.Duration("took", took))
	})
	var autosave *system.PersistenceSystem
	if store != nil {
		autosave = system.NewPersistenceSystem(c, store, lvl.Info.Name, cfg.TickFrames(cfg.Database.Autosave))
		runner.Register(autosave)
	}
	event.Subscribe(c.Bus, func(e event.ObjectKilled) {
		log.Debug("killed",
			zap.Stringer("victim", e.Victim),
			zap.Stringer("attacker", e.Attacker),
			zap.String("cause", e.Cause))
	})

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	rate := cfg.Simulation.TickRate
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	printStat("systems", runner.Len())
	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", rate))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			// A slow tick is caught up on the next wakeup, up to a limit.
			due := c.Clock.Accumulate(now.Sub(last))
			last = now
			for i := 0; i < due; i++ {
				start := time.Now()
				c.Clock.Advance()
				runner.Tick(rate)
				c.Metrics.Tick(float64(time.Since(start).Microseconds()) / 1000)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if autosave != nil {
				autosave.Save()
			}
			log.Info("server stopped",
				zap.Uint64("tick", uint64(c.Now())),
				zap.Int("killed", c.Level.KilledMonsters),
				zap.Int("total", c.Level.TotalMonsters))
			return nil
		}
	}
}

// newContext builds the simulation context for one level from config.
func newContext(cfg *config.Config, lvl *data.Level, log *zap.Logger) *sim.Context {
	sc := cfg.Simulation
	clock := world.NewClock(sc.TickRate)
	store := world.NewStore(arena.Policy{
		Max:        sc.MaxObjects,
		Reserved:   sc.ReservedPlayerSlots,
		Quarantine: uint64(clock.Ticks(sc.Quarantine)),
		Warmup:     uint64(clock.Ticks(sc.Warmup)),
	})

	c := sim.New(log, clock, store, lvl.Map)
	c.Rand = rand.New(rand.NewSource(sc.Seed))
	c.Printer = message.NewPrinter(language.Make(cfg.Server.Language))
	c.Rules = sim.Rules{
		Skill:           cfg.Rules.Skill,
		Deathmatch:      cfg.Rules.Deathmatch || lvl.Info.Deathmatch,
		Coop:            cfg.Rules.Coop || lvl.Info.Coop,
		TeamPlay:        cfg.Rules.TeamPlay,
		NoFriendlyFire:  cfg.Rules.NoFriendlyFire,
		ProtectDebounce: clock.Ticks(sc.ProtectDebounce),
		PainDebounce:    clock.Ticks(sc.PainDebounce),
	}
	c.Features = sim.Features{
		SinglePlayerAI: cfg.Features.SinglePlayerAI,
		Flyer:          cfg.Features.Flyer,
		Medic:          cfg.Features.Medic,
		Scripting:      cfg.Features.Scripting,
	}
	log.Info("simulation context ready",
		zap.String("level", lvl.Info.Name),
		zap.Duration("tick_rate", sc.TickRate),
		zap.Int("max_objects", sc.MaxObjects),
		zap.Int("skill", c.Rules.Skill))
	return c
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
