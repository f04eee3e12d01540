package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xlab/closer"

	"voxelforge/internal/config"
	"voxelforge/internal/meshing"
	"voxelforge/internal/noise"
	"voxelforge/internal/physics"
	"voxelforge/internal/profiling"
	"voxelforge/internal/world"
	"voxelforge/pkg/blockmodel"
)

const (
	tickInterval    = 100 * time.Millisecond
	physicsInterval = 16 * time.Millisecond
)

func main() {
	var (
		configPath  = flag.String("config", "settings.toml", "path to the settings file")
		metricsAddr = flag.String("metrics", ":9090", "prometheus listen address, empty to disable")
		seedFlag    = flag.Int64("seed", 0, "world seed, overrides the config file")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	userCfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	settings := userCfg.Settings()

	seed := userCfg.World.Seed
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seed = *seedFlag
		}
	})

	provider := blockmodel.NewStaticProvider()
	for _, bt := range world.BlockTypes() {
		provider.Register(uint16(bt))
	}
	provider.Register(world.PropModelTree)
	provider.Register(world.PropModelBush)

	reg := prometheus.NewRegistry()
	metrics := world.NewMetrics(reg)

	backend := physics.NewSimBackend()
	ctx, cancel := context.WithCancel(context.Background())
	go backend.Run(ctx, physicsInterval)

	w, err := world.New(world.Config{
		Log:      log,
		Settings: settings,
		Provider: provider,
		Physics:  backend,
		Noise:    noise.NewPerlin(seed, noise.PerlinOptions{
			HeightFrequency:     settings.GetHeightFrequency(),
			CaveFrequency:       settings.GetCaveFrequency(),
			VegetationFrequency: settings.GetVegetationFrequency(),
		}),
		Seed:    seed,
		Mesher:  meshing.NewBuilder(),
		Metrics: metrics,
	})
	if err != nil {
		log.Error("create world", "err", err)
		cancel()
		os.Exit(1)
	}

	closer.Bind(func() {
		cancel()
		w.Close()
		log.Info("shutdown complete")
	})

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server", "err", err)
			}
		}()
		log.Info("metrics listening", "addr", *metricsAddr)
	}

	go runLoop(ctx, w, log)
	closer.Hold()
}

// runLoop ticks the world around a player standing at the spawn
// column.
func runLoop(ctx context.Context, w *world.World, log *slog.Logger) {
	spawnX, spawnZ := 8, 8
	surface := w.SurfaceHeightAt(spawnX, spawnZ)
	player := mgl32.Vec3{float32(spawnX) + 0.5, float32(surface + 1), float32(spawnZ) + 0.5}
	log.Info("spawning", "x", spawnX, "z", spawnZ, "surface", surface)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	ready := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			profiling.ResetTick()
			w.Tick(player)
			if !ready {
				select {
				case <-w.TerrainReady():
					ready = true
					log.Info("terrain ready", "blocks", w.Blocks())
				default:
				}
			}
		}
	}
}
