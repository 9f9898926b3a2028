package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/levelonedev/boxcars/internal/app"
	"github.com/levelonedev/boxcars/internal/archive"
	"github.com/levelonedev/boxcars/internal/cache"
	"github.com/levelonedev/boxcars/internal/config"
	"github.com/levelonedev/boxcars/internal/container"
	"github.com/levelonedev/boxcars/internal/eventbus"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/levelonedev/boxcars/internal/metrics"
	"github.com/levelonedev/boxcars/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
)

type cliOptions struct {
	configPath    string
	crc           container.CrcCheck
	network       container.NetworkParse
	strictDeletes bool
	maxFrames     int
	archivePath   string
	publish       bool
	metricsAddr   string
	logLevel      string
	frames        bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, []string, *flag.FlagSet, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("boxcars", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: boxcars [flags] <file.replay>...\n\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (env BOXCARS_CONFIG)")
	fs.VarP(&opts.crc, "crc", "", "crc check mode: always, never, on-error")
	fs.VarP(&opts.network, "network", "n", "network parse mode: always, never, ignore-on-error")
	fs.BoolVar(&opts.strictDeletes, "strict-deletes", false, "treat deletes of actors that are not live as errors")
	fs.IntVar(&opts.maxFrames, "max-frames", 0, "upper bound on decoded frames (0 = no limit)")
	fs.StringVar(&opts.archivePath, "archive", "", "badger directory to archive decoded replays")
	fs.BoolVar(&opts.publish, "publish", false, "publish summaries to NATS (eventbus.url)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address and keep running")
	fs.StringVarP(&opts.logLevel, "log-level", "l", "", "TRACE, DEBUG, INFO, WARN, ERROR")
	fs.BoolVar(&opts.frames, "frames", false, "print per-frame counts")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fs, err
	}
	return opts, fs.Args(), fs, nil
}

// mergeConfig применяет значения из конфигурации к флагам, которые не заданы явно
func mergeConfig(opts *cliOptions, fs *flag.FlagSet, cfg *config.Config) error {
	if !fs.Changed("crc") {
		if err := opts.crc.Set(cfg.Decode.GetCrc()); err != nil {
			return err
		}
	}
	if !fs.Changed("network") {
		if err := opts.network.Set(cfg.Decode.GetNetwork()); err != nil {
			return err
		}
	}
	if !fs.Changed("strict-deletes") {
		opts.strictDeletes = cfg.Decode.StrictDeletes
	}
	if !fs.Changed("max-frames") {
		opts.maxFrames = cfg.Decode.GetMaxFrames()
	}
	if opts.archivePath == "" {
		opts.archivePath = cfg.Archive.GetPath()
	}
	if opts.metricsAddr == "" {
		opts.metricsAddr = cfg.Metrics.GetAddr()
	}
	if opts.logLevel == "" {
		opts.logLevel = cfg.Log.GetLevel()
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, files, fs, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		return 2
	}
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	if err := mergeConfig(opts, fs, cfg); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "log level: %v\n", err)
		return 2
	}
	if err := logging.InitLogger(logging.Options{Level: level, Dir: cfg.Log.Dir, JSON: cfg.Log.JSON}); err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 1
	}
	defer logging.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName())
		if err != nil {
			logging.Warn("OpenTelemetry недоступен: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("OpenTelemetry shutdown: %v", err)
				}
			}()
		}
	}

	decodeOpts := container.Options{Crc: opts.crc, Network: opts.network}
	decodeOpts.Decode.StrictDeletes = opts.strictDeletes
	decodeOpts.Decode.MaxFrames = opts.maxFrames

	deps, cleanup := connect(opts, cfg, decodeOpts)
	defer cleanup()

	pipeline := app.NewPipeline(decodeOpts, deps)
	logging.Debug("Режим разбора: %s", pipeline.Mode())

	failed := 0
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		sum, rp, err := pipeline.ProcessFile(ctx, path)
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			failed++
			continue
		}
		printSummary(stdout, sum)
		if opts.frames && rp != nil && rp.Network != nil {
			printFrames(stdout, rp)
		}
	}

	if opts.metricsAddr != "" {
		logging.Info("Разбор завершён, /metrics доступен до завершения процесса (Ctrl+C)")
		<-ctx.Done()
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// connect поднимает интеграции, заданные флагами и конфигурацией
func connect(opts *cliOptions, cfg *config.Config, decodeOpts container.Options) (app.Deps, func()) {
	var deps app.Deps
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if opts.archivePath != "" {
		arch, err := archive.Open(opts.archivePath)
		if err != nil {
			logging.Warn("Архив отключён: %v", err)
		} else {
			deps.Archive = arch
			closers = append(closers, func() { arch.Close() })
		}
	}

	if addr := cfg.Cache.GetAddr(); addr != "" {
		var cold cache.ColdStorage
		if deps.Archive != nil {
			cold = app.ArchiveSummaries{Archive: deps.Archive, Mode: app.ModeTag(decodeOpts)}
		}
		c, err := cache.NewRedisCache(cache.Config{
			Addr:     addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.GetTTL(),
		}, cold)
		if err != nil {
			logging.Warn("Кеш Redis отключён: %v", err)
		} else {
			deps.Cache = c
			closers = append(closers, func() { c.Close() })
		}
	}

	if opts.publish {
		url := cfg.EventBus.GetURL()
		if url == "" {
			logging.Warn("--publish без eventbus.url, события не отправляются")
		} else if bus, err := eventbus.NewNATSBus(url); err != nil {
			logging.Warn("NATS отключён: %v", err)
		} else {
			deps.Bus = bus
			deps.Subject = cfg.EventBus.GetSubject()
			closers = append(closers, func() { bus.Close() })
			if _, err := eventbus.StartLoggingListener(bus); err != nil {
				logging.Debug("LoggingListener: %v", err)
			}
		}
	}

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		deps.Metrics = metrics.NewDecodeMetrics(reg)
		if deps.Bus != nil {
			reg.MustRegister(eventbus.NewStatsCollector(deps.Bus))
		}
		srv := metrics.StartHTTP(opts.metricsAddr, reg)
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		})
	}

	return deps, cleanup
}

func printSummary(w io.Writer, s *app.Summary) {
	source := "decoded"
	if s.FromCache {
		source = "cached"
	}
	fmt.Fprintf(w, "%s (%s, crc %08x)\n", s.File, source, s.ContentCRC)
	fmt.Fprintf(w, "  version    %s  %s\n", s.Version, s.GameType)
	if s.Name != "" || s.Map != "" {
		fmt.Fprintf(w, "  replay     %q on %s\n", s.Name, s.Map)
	}
	fmt.Fprintf(w, "  score      %d - %d (team size %d)\n", s.Score[0], s.Score[1], s.TeamSize)
	fmt.Fprintf(w, "  frames     %d (key frames %d, tick marks %d)\n", s.Frames, s.KeyFrames, s.TickMarks)
	fmt.Fprintf(w, "  actors     %d spawned, %d live at end\n", s.Actors, s.Live)
	fmt.Fprintf(w, "  traffic    %d spawns, %d attribute updates, %d deletes\n", s.Spawns, s.Updates, s.Deletes)
	if top := s.TopClasses(5); len(top) > 0 {
		names := make([]string, len(top))
		for i, c := range top {
			names[i] = fmt.Sprintf("%s×%d", c.Class, c.Count)
		}
		fmt.Fprintf(w, "  classes    %s\n", strings.Join(names, ", "))
	}
	if s.Diagnostics > 0 {
		fmt.Fprintf(w, "  warnings   %d\n", s.Diagnostics)
	}
	if s.NetworkError != "" {
		fmt.Fprintf(w, "  network    skipped: %s\n", s.NetworkError)
	}
	if s.ArchiveID != "" {
		fmt.Fprintf(w, "  archive    %s\n", s.ArchiveID)
	}
}

func printFrames(w io.Writer, rp *container.Replay) {
	for i, f := range rp.Network.Frames {
		if len(f.Spawns) == 0 && len(f.Updates) == 0 && len(f.Deletes) == 0 {
			continue
		}
		fmt.Fprintf(w, "  #%-6d t=%8.3f  +%d ~%d -%d\n", i, f.Time, len(f.Spawns), len(f.Updates), len(f.Deletes))
	}
}
