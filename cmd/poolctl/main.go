// Command poolctl is a demonstration CLI over internal/pool: it spawns
// and destroys entries in a thing pool, saves and loads its snapshots,
// and reports occupancy statistics.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/l1jgo/thingpool/internal/config"
	"github.com/l1jgo/thingpool/internal/event"
	"github.com/l1jgo/thingpool/internal/kindregistry"
	"github.com/l1jgo/thingpool/internal/pool"
	"github.com/l1jgo/thingpool/internal/report"
	"github.com/l1jgo/thingpool/internal/scripting"
	"github.com/l1jgo/thingpool/internal/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              poolctl  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m   generational object pool · demo CLI      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
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

// ── Shared flags and setup ─────────────────────────────────────────

var configPath string

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Demonstration CLI over a fixed-capacity generational object pool.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (optional, defaults applied otherwise)")
	rootCmd.AddCommand(spawnCmd, statsCmd, snapshotCmd, demoCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
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

// openPool loads an existing snapshot at cfg.Snapshot.Path if one exists,
// or returns a fresh pool at cfg.Pool.Capacity otherwise. A load failure
// emits event.SnapshotLoadFailed on bus before being returned as an error.
func openPool(cfg *config.Config, bus *event.Bus) (*pool.Pool[thing], error) {
	p := pool.NewPool[thing](cfg.Pool.Capacity)
	if _, err := os.Stat(cfg.Snapshot.Path); err == nil {
		if err := p.LoadFromFile(cfg.Snapshot.Path); err != nil {
			event.Emit(bus, event.SnapshotLoadFailed{Path: cfg.Snapshot.Path, Err: err})
			return nil, fmt.Errorf("load snapshot %s: %w", cfg.Snapshot.Path, err)
		}
	}
	return p, nil
}

func savePool(cfg *config.Config, p *pool.Pool[thing], bus *event.Bus) error {
	if err := p.SaveToFile(cfg.Snapshot.Path); err != nil {
		event.Emit(bus, event.SnapshotSaveFailed{Path: cfg.Snapshot.Path, Err: err})
		return err
	}
	event.Emit(bus, event.SnapshotSaved{Path: cfg.Snapshot.Path})
	return nil
}

// ── stats ───────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report pool occupancy statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bus := event.NewBus()
		p, err := openPool(cfg, bus)
		if err != nil {
			return err
		}

		var active int
		p.All(func(r pool.Ref, payload *thing) { active++ })

		s := report.Stats{
			Capacity:       p.Capacity(),
			ActiveCount:    active,
			FreeCount:      p.Capacity() - 1 - active,
			PendingDestroy: p.PendingDestroyCount(),
		}

		printBanner()
		printSection("pool stats")
		printer := report.NewPrinter("en-US")
		fmt.Println("  " + printer.Sprint(s))
		printStat("fill ratio (x1000)", int(s.FillRatio()*1000))
		return nil
	},
}

// ── spawn ───────────────────────────────────────────────────────────

var spawnCount int
var spawnKind uint32
var spawnParentIndex uint32

var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Spawn one or more things into the pool, optionally under a parent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Sync()

		bus := event.NewBus()
		p, err := openPool(cfg, bus)
		if err != nil {
			return err
		}

		sink, err := newAuditSink(cmd.Context(), cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer sink.close()
		sink.subscribe(bus)

		var parent pool.Ref
		if spawnParentIndex != 0 {
			parent = pool.Ref{Index: spawnParentIndex}
			// Resolve the live generation for this index, if any, so a
			// stale --parent-index doesn't silently attach under garbage.
			p.All(func(r pool.Ref, payload *thing) {
				if r.Index == spawnParentIndex {
					parent = r
				}
			})
		}

		printBanner()
		printSection("spawn")
		for i := 0; i < spawnCount; i++ {
			r := p.Spawn()
			if r.IsZero() {
				printOK(fmt.Sprintf("pool full after %d spawns", i))
				break
			}
			p.Get(r).Kind = spawnKind
			event.Emit(bus, event.Spawned{Ref: r})

			if !parent.IsZero() {
				p.AttachChild(parent, r)
			}
			printOK(fmt.Sprintf("spawned %+v", r))
		}

		if err := savePool(cfg, p, bus); err != nil {
			return err
		}
		bus.SwapBuffers()
		bus.DispatchAll()
		if err := sink.flush(cmd.Context()); err != nil {
			log.Warn("telemetry flush failed", zap.Error(err))
		}
		printOK(fmt.Sprintf("saved snapshot to %s", cfg.Snapshot.Path))
		return nil
	},
}

func init() {
	spawnCmd.Flags().IntVar(&spawnCount, "count", 1, "number of things to spawn")
	spawnCmd.Flags().Uint32Var(&spawnKind, "kind", 0, "kind ID to assign to spawned things")
	spawnCmd.Flags().Uint32Var(&spawnParentIndex, "parent-index", 0, "slot index to attach spawned things under (0 = no parent)")
}

// ── snapshot ────────────────────────────────────────────────────────

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save or load a pool snapshot.",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current pool to its configured snapshot path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bus := event.NewBus()
		p, err := openPool(cfg, bus)
		if err != nil {
			return err
		}

		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Sync()
		sink, err := newAuditSink(cmd.Context(), cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer sink.close()
		sink.subscribe(bus)

		if err := savePool(cfg, p, bus); err != nil {
			return err
		}
		bus.SwapBuffers()
		bus.DispatchAll()
		if err := sink.flush(cmd.Context()); err != nil {
			log.Warn("telemetry flush failed", zap.Error(err))
		}
		printOK(fmt.Sprintf("saved snapshot to %s", cfg.Snapshot.Path))
		return nil
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load and validate the configured snapshot, reporting its stats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Sync()

		bus := event.NewBus()
		sink, err := newAuditSink(cmd.Context(), cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer sink.close()
		sink.subscribe(bus)

		p := pool.NewPool[thing](cfg.Pool.Capacity)
		if err := p.LoadFromFile(cfg.Snapshot.Path); err != nil {
			event.Emit(bus, event.SnapshotLoadFailed{Path: cfg.Snapshot.Path, Err: err})
			bus.SwapBuffers()
			bus.DispatchAll()
			_ = sink.flush(cmd.Context())
			return err
		}
		var active int
		p.All(func(r pool.Ref, payload *thing) { active++ })
		printOK(fmt.Sprintf("loaded %s: %d active of %d capacity", cfg.Snapshot.Path, active, p.Capacity()))
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd)
}

// ── demo ────────────────────────────────────────────────────────────

var demoTicks int

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a short tick loop exercising spawn, hierarchy, deferred destroy, and scripting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Sync()

		printBanner()

		p := pool.NewPool[thing](cfg.Pool.Capacity)
		bus := event.NewBus()
		runner := sim.NewRunner()
		runner.Register(&agingSystem{pool: p})

		sink, err := newAuditSink(cmd.Context(), cfg.Telemetry, log)
		if err != nil {
			return err
		}
		defer sink.close()
		sink.subscribe(bus)

		registry, err := kindregistry.Load("kinds.yaml")
		if err != nil {
			log.Warn("kind registry unavailable, using numeric fallback", zap.Error(err))
			registry = nil
		}

		engine, err := scripting.NewEngine(cfg.Scripting.ScriptDir, log)
		if err != nil {
			log.Warn("scripting engine unavailable, destroy predicate disabled", zap.Error(err))
			engine = nil
		}
		if engine != nil {
			defer engine.Close()
		}

		printSection("seeding")
		root := p.Spawn()
		p.Get(root).Kind = 1
		event.Emit(bus, event.Spawned{Ref: root})
		for i := 0; i < 5; i++ {
			c := p.Spawn()
			p.Get(c).Kind = uint32(i % 2)
			p.Get(c).Value = int32(i - 2)
			p.AttachChild(root, c)
			event.Emit(bus, event.Spawned{Ref: c})
		}
		printOK(fmt.Sprintf("seeded %d things under root %+v", 5, root))

		printSection("ticking")
		bus.SwapBuffers()
		for tick := 0; tick < demoTicks; tick++ {
			runner.TickPhase(sim.PhaseUpdate, time.Millisecond)

			p.All(func(r pool.Ref, payload *thing) {
				if engine != nil && engine.ShouldDestroy(scripting.DestroyContext{
					RefIndex:   int(r.Index),
					Generation: int(r.Generation),
					Kind:       int(payload.Kind),
					Value:      int(payload.Value),
					Age:        int(payload.Age),
				}) {
					if p.DestroyLater(r) {
						event.Emit(bus, event.Destroyed{Ref: r})
					}
				}
			})

			n := p.FlushDestroyLater()
			if n > 0 {
				printOK(fmt.Sprintf("tick %d: flushed %d destroyed slot(s)", tick, n))
			}
			bus.DispatchAll()
			bus.SwapBuffers()
			if err := sink.flush(cmd.Context()); err != nil {
				log.Warn("telemetry flush failed", zap.Error(err))
			}
		}

		printSection("final state")
		var active int
		p.All(func(r pool.Ref, payload *thing) {
			active++
			name := fmt.Sprintf("kind#%d", payload.Kind)
			if registry != nil {
				name = registry.Name(payload.Kind)
			}
			printStat(fmt.Sprintf("ref %+v (%s)", r, name), int(payload.Value))
		})
		printStat("active total", active)

		return nil
	},
}

func init() {
	demoCmd.Flags().IntVar(&demoTicks, "ticks", 10, "number of demo ticks to run")
}
