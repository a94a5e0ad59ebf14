package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/filetug/tugfm/internal/log"
	loglogrus "github.com/filetug/tugfm/internal/log/logrus"
	"github.com/filetug/tugfm/pkg/files/osfile"
	"github.com/filetug/tugfm/pkg/filetug"
	"github.com/filetug/tugfm/pkg/graphics"
	"github.com/filetug/tugfm/pkg/metrics"
	"github.com/filetug/tugfm/pkg/preview"
	"github.com/filetug/tugfm/pkg/profiling"
	"github.com/filetug/tugfm/pkg/raster"
	"github.com/filetug/tugfm/pkg/settings"
	"github.com/filetug/tugfm/pkg/tasks"
)

// Version is the application version (set via ldflags).
var Version = "dev"

const (
	loggerTypeDefault = "default"
	loggerTypeJSON    = "json"
)

type config struct {
	StartDir      string
	SettingsPath  string
	LogFile       string
	LoggerType    string
	Debug         bool
	PprofAddr     string
	CPUProfile    string
	MemProfile    string
	Graphics      string
	MaxConcurrent int
	NoProgressive bool
}

func parseFlags(args []string) (config, error) {
	var cfg config
	app := kingpin.New("tugfm", "Terminal file manager with background file operations and image previews.")
	app.Version(Version)
	app.DefaultEnvars()
	app.Arg("dir", "Directory to open.").Default(".").StringVar(&cfg.StartDir)
	app.Flag("settings", "Settings file, defaults to ~/.filetug/tugfm.yaml.").StringVar(&cfg.SettingsPath)
	app.Flag("log-file", "Log file, defaults to ~/.filetug/tugfm.log.").StringVar(&cfg.LogFile)
	app.Flag("logger", "Log format.").Default(loggerTypeDefault).EnumVar(&cfg.LoggerType, loggerTypeDefault, loggerTypeJSON)
	app.Flag("debug", "Enable debug logging.").BoolVar(&cfg.Debug)
	app.Flag("pprof", "Serve pprof and metrics on address (e.g. localhost:6060).").StringVar(&cfg.PprofAddr)
	app.Flag("cpuprofile", "Write cpu profile to file.").StringVar(&cfg.CPUProfile)
	app.Flag("memprofile", "Write memory profile to file.").StringVar(&cfg.MemProfile)
	app.Flag("graphics", "Image preview backend, overrides settings.").EnumVar(&cfg.Graphics,
		settings.GraphicsAuto, settings.GraphicsKitty, settings.GraphicsNone)
	app.Flag("max-concurrent", "Maximum concurrently running file operations, 0 for no limit.").Default("-1").IntVar(&cfg.MaxConcurrent)
	app.Flag("no-progressive", "Skip the low resolution image preview.").BoolVar(&cfg.NoProgressive)
	if _, err := app.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

var (
	osOpenFile = os.OpenFile
	osMkdirAll = os.MkdirAll
	osExit     = os.Exit
)

// getLogger opens the log file. The terminal belongs to the UI so nothing is logged to stderr.
func getLogger(cfg config) (log.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = settings.DefaultLogFilePath(); err != nil {
			return nil, nil, err
		}
	}
	if err := osMkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := osOpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logrusLog := logrus.New()
	logrusLog.Out = f
	if cfg.Debug {
		logrusLog.SetLevel(logrus.DebugLevel)
	}
	switch cfg.LoggerType {
	case loggerTypeJSON:
		logrusLog.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrusLog.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}
	logger := loglogrus.NewLogrus(logrus.NewEntry(logrusLog)).WithValues(log.Kv{
		"version": Version,
	})
	logger.Debugf("Debug level is enabled")
	return logger, f, nil
}

func loadSettings(cfg config) (*settings.Settings, string, error) {
	path := cfg.SettingsPath
	if path == "" {
		var err error
		if path, err = settings.DefaultFilePath(); err != nil {
			return nil, "", err
		}
	}
	s, err := settings.Load(path)
	if err != nil {
		return nil, "", err
	}
	if cfg.Graphics != "" {
		s.Preview.Graphics = cfg.Graphics
	}
	if cfg.MaxConcurrent >= 0 {
		s.Tasks.MaxConcurrent = cfg.MaxConcurrent
	}
	if cfg.NoProgressive {
		s.Preview.Progressive = false
	}
	return s, path, nil
}

var (
	newApp   = tview.NewApplication
	setupApp = filetug.SetupApp
	runApp   = func(app *tview.Application) error { return app.Run() }
)

// Run runs the file manager until the UI quits or a termination signal arrives.
func Run(ctx context.Context, args []string) (err error) {
	cfg, err := parseFlags(args)
	if err != nil {
		return fmt.Errorf("invalid command line: %w", err)
	}
	logger, logFile, err := getLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = logFile.Close()
	}()
	profiling.SetLogger(logger)

	if cfg.CPUProfile != "" {
		stopCPUProfiling := profiling.DoCPUProfiling(cfg.CPUProfile)
		defer stopCPUProfiling()
	}
	if cfg.MemProfile != "" {
		stopMemProfiling := profiling.DoMemProfiling(cfg.MemProfile)
		defer stopMemProfiling()
	}

	s, settingsPath, err := loadSettings(cfg)
	if err != nil {
		return err
	}
	startDir, err := filepath.Abs(cfg.StartDir)
	if err != nil {
		return fmt.Errorf("invalid start directory: %w", err)
	}

	store := osfile.NewStore("/")
	manager := tasks.NewManager(store,
		tasks.WithMaxConcurrent(s.Tasks.MaxConcurrent),
		tasks.WithLogger(logger))
	controller := preview.NewController(raster.ImageRasterizer{FastBelow: 256},
		preview.WithQueueCapacity(s.Preview.QueueCapacity),
		preview.WithLogger(logger))
	defer controller.Close()

	app := newApp()
	nav, err := setupApp(app, startDir, filetug.Deps{
		Settings:     s,
		SettingsPath: settingsPath,
		Store:        store,
		Manager:      manager,
		Controller:   controller,
		Backend:      graphics.Detect(s.Preview.Graphics),
		Out:          os.Stdout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()
		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// UI loop.
	{
		g.Add(
			func() error {
				return runApp(app)
			},
			func(_ error) {
				app.Stop()
			},
		)
	}

	// Preview and task events.
	{
		pumpCtx, pumpCancel := context.WithCancel(ctx)
		defer pumpCancel()
		g.Add(
			func() error {
				err := nav.Pump(pumpCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			},
			func(_ error) {
				pumpCancel()
			},
		)
	}

	// Debug server.
	if cfg.PprofAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: cfg.PprofAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Add(
			func() error {
				logger.Infof("debug server listening on %s", cfg.PprofAddr)
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("debug server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			},
		)
	}

	err = g.Run()
	logger.Infof("waiting for running file operations")
	manager.Wait()
	return err
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			osExit(1)
		}
	}()
	if err := Run(context.Background(), os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		osExit(1)
	}
}
