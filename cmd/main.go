package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "beacon_analyzer/docs"
	"beacon_analyzer/internal/handlers"
	"beacon_analyzer/internal/logger"
	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/server"
	"beacon_analyzer/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix       = "BEACON"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "beacon-analyzer",
		Short:         "Web dashboard for beacon temperature and RSSI readings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(configFile); err != nil {
				return fmt.Errorf("error reading config: %w", err)
			}
			return serve()
		},
	}
	root.Flags().StringVar(&configFile, "config", "", "config file (default configs/config.yml)")
	root.Flags().String("port", "", "HTTP port")
	root.Flags().String("db", "", "SQLite database attached to new sessions")
	_ = viper.BindPFlag("port", root.Flags().Lookup("port"))
	_ = viper.BindPFlag("db.path", root.Flags().Lookup("db"))
	return root
}

func serve() error {
	// init logger
	log := logger.Get(logger.Config{
		Level:    viper.GetString("log.level"),
		Encoding: viper.GetString("log.encoding"),
	})
	defer func() { _ = log.Sync() }()

	// wire dependencies
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := service.OpenStore(ctx, serviceConfig(), log)
	if err != nil {
		return fmt.Errorf("open default dataset: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Errorw("failed to close sessions", "err", cerr)
		}
	}()

	services := service.NewService(store, renderOptions(log))
	apiHandler := handlers.NewHandler(services, log, handlers.WithUploadLimit(viper.GetInt64("upload.max_bytes")))

	// evict idle sessions (via composed service)
	go services.Janitor.Run(ctx, viper.GetDuration("session.sweep_interval"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	return nil
}

func setDefaults() {
	viper.SetDefault("port", "8501")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("log.encoding", logger.ConsoleEncoding)
	viper.SetDefault("db.path", "")
	viper.SetDefault("upload.dir", "")
	viper.SetDefault("upload.max_bytes", int64(512<<20))
	viper.SetDefault("session.ttl", 2*time.Hour)
	viper.SetDefault("session.sweep_interval", time.Minute)
	viper.SetDefault("selection.default_first", 3)
	viper.SetDefault("quality.threshold", 0.5)
	viper.SetDefault("quality.min_readings", 100)

	def := render.DefaultOptions()
	viper.SetDefault("render.resample", def.Resample)
	viper.SetDefault("render.target_temp_c", def.TargetTempC)
	viper.SetDefault("render.temperature_range", []float64{def.TemperatureRange.Min, def.TemperatureRange.Max})
	viper.SetDefault("render.rssi_range", []float64{def.RSSIRange.Min, def.RSSIRange.Max})
	viper.SetDefault("render.schematic_rows", def.SchematicRows)
	viper.SetDefault("render.schematic_cols", def.SchematicCols)
	viper.SetDefault("cors.allowed_origins", []string{})
}

// loadConfig reads .env, then configs/config.yml (or file), then BEACON_* variables.
// A missing config file is not an error; defaults apply.
func loadConfig(file string) error {
	_ = godotenv.Load()

	setDefaults()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if file != "" {
		viper.SetConfigFile(file)
		return viper.ReadInConfig()
	}
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func serviceConfig() service.Config {
	return service.Config{
		DefaultDBPath:  viper.GetString("db.path"),
		DefaultFirst:   viper.GetInt("selection.default_first"),
		UploadDir:      viper.GetString("upload.dir"),
		MaxUploadBytes: viper.GetInt64("upload.max_bytes"),
		SessionTTL:     viper.GetDuration("session.ttl"),
		Quality: service.QualityConfig{
			Threshold:   viper.GetFloat64("quality.threshold"),
			MinReadings: viper.GetInt("quality.min_readings"),
		},
	}
}

func renderOptions(log *logger.Logger) render.Options {
	opts := render.DefaultOptions()
	opts.Resample = viper.GetString("render.resample")
	opts.TargetTempC = viper.GetFloat64("render.target_temp_c")
	opts.SchematicRows = viper.GetInt("render.schematic_rows")
	opts.SchematicCols = viper.GetInt("render.schematic_cols")
	opts.TemperatureRange = rangeKey("render.temperature_range", opts.TemperatureRange, log)
	opts.RSSIRange = rangeKey("render.rssi_range", opts.RSSIRange, log)
	return opts
}

// rangeKey reads a [min, max] pair, keeping def when the key is malformed.
func rangeKey(key string, def render.Range, log *logger.Logger) render.Range {
	var v []float64
	if err := viper.UnmarshalKey(key, &v); err != nil || len(v) != 2 || v[0] >= v[1] {
		log.Warnw("invalid axis range in config; using default", "key", key, "value", viper.Get(key), "default", def)
		return def
	}
	return render.Range{Min: v[0], Max: v[1]}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8501"
		}
		log.Infow("server_started", "port", port)
		cfg := server.Config{AllowedOrigins: viper.GetStringSlice("cors.allowed_origins")}
		if err := srv.Run(port, handler.InitRoutes(), cfg); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
