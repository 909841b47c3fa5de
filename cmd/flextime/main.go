package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/flextime/internal/cache"
	"github.com/username/flextime/internal/calendar"
	"github.com/username/flextime/internal/clockify"
	"github.com/username/flextime/internal/config"
	"github.com/username/flextime/internal/flex"
	"github.com/username/flextime/internal/report"
	"github.com/username/flextime/internal/timemanager"
	"github.com/username/flextime/pkg/dateutil"
)

var (
	configPath string
	token      string
	cfg        *config.Config
	logger     = zap.NewNop()
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		includeToday bool
		startDate    string
		startBalance int
	)

	cmd := &cobra.Command{
		Use:           "flextime",
		Short:         "Flex-time balance calculator for Clockify",
		Long:          "Calculate your flex-time balance from Clockify time entries, time off and public holidays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if token != "" {
				cfg.Clockify.Token = token
			}

			logger, err = initLogger(cfg.Log)
			if err != nil {
				return err
			}
			logger = logger.With(zap.String("run_id", uuid.NewString()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("start-balance") && !cmd.Flags().Changed("start-date") {
				return fmt.Errorf("--start-balance requires --start-date")
			}

			params := timemanager.Params{
				StartBalance: startBalance,
				IncludeToday: includeToday,
				Today:        dateutil.Today(time.Now()),
			}
			if startDate != "" {
				start, err := flex.ParseStartDate(startDate)
				if err != nil {
					return err
				}
				params.Start = &start
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBalance(ctx, params, report.Options{
				ExplicitStart:    params.Start != nil,
				ShowStartBalance: cmd.Flags().Changed("start-balance"),
			})
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default ./flextime.yaml or $HOME/.flextime/flextime.yaml)")
	cmd.PersistentFlags().StringVarP(&token, "token", "t", "", "Clockify API key (default $CLOCKIFY_TOKEN or $TOKEN)")
	cmd.Flags().BoolVarP(&includeToday, "include-today", "i", false, "Include today in the calculation")
	cmd.Flags().StringVarP(&startDate, "start-date", "s", "", "First date to calculate from, YYYY-MM-DD (default first tracked date)")
	cmd.Flags().IntVarP(&startBalance, "start-balance", "b", 0, "Balance in minutes carried over to the start date")

	cmd.AddCommand(holidaysCmd(), cacheCmd())

	return cmd
}

func runBalance(ctx context.Context, params timemanager.Params, opts report.Options) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	cal, err := calendar.New(cfg.Calendar, client, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize calendar: %w", err)
	}

	var store timemanager.FirstDateStore
	if cfg.Cache.Enabled {
		s, err := cache.Open(cfg.Cache.GetPath(), logger)
		if err != nil {
			logger.Warn("Cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer s.Close()
			store = s
		}
	}

	manager := timemanager.NewManager(cfg, client, cal, store, logger)

	started := time.Now()
	stopSpinner := report.StartSpinner(os.Stdout, "Fetching data from Clockify...")
	result, err := manager.Calculate(ctx, params)
	stopSpinner()
	if err != nil {
		return err
	}

	logger.Info("Calculation finished", zap.Duration("took", time.Since(started)))

	return report.Write(os.Stdout, result, opts)
}

func holidaysCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List public holidays from the configured calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			calCfg := cfg.Calendar
			var fetcher calendar.HolidayFetcher
			if calCfg.Type == config.CalendarClockify {
				client, err := newClient()
				if err != nil {
					logger.Warn("No Clockify token, listing holidays from file", zap.Error(err))
					calCfg.Type = config.CalendarFile
				} else {
					fetcher = client
				}
			}

			cal, err := calendar.New(calCfg, fetcher, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize calendar: %w", err)
			}

			from := dateutil.Date(year, time.January, 1)
			to := dateutil.Date(year, time.December, 31)
			list, err := cal.Holidays(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			fmt.Print(report.RenderHolidays(list))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Year to list")

	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the first-date cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget cached first tracked dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.Open(cfg.Cache.GetPath(), logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d cached entr%s from %s\n", n, pluralY(n), store.Path())
			return nil
		},
	})

	return cmd
}

func newClient() (*clockify.Client, error) {
	apiKey, err := cfg.Clockify.GetToken()
	if err != nil {
		return nil, err
	}

	client := clockify.NewClient(
		cfg.Clockify.APIEndpoint,
		cfg.Clockify.PTOEndpoint,
		clockify.APIKey(apiKey),
		cfg.Clockify.GetTimeout(),
		logger,
	)
	if cfg.Clockify.WorkspaceID != "" {
		client.SetWorkspace(cfg.Clockify.WorkspaceID)
	}
	return client, nil
}

func initLogger(lc config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", lc.Level, err)
	}

	if lc.File != "" {
		return initFileLogger(lc.File, level), nil
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func initFileLogger(logFile string, level zapcore.Level) *zap.Logger {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		level,
	)

	return zap.New(core)
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
