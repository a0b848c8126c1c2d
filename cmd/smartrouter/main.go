package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/smartrouter/internal/profile"
	"github.com/hrygo/smartrouter/internal/version"
	"github.com/hrygo/smartrouter/server"
	"github.com/hrygo/smartrouter/store"
	"github.com/hrygo/smartrouter/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "smartrouter",
	Short: "Routes each LLM query to a fast or an advanced model based on its complexity.",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		setupLogger(instanceProfile)
		return run(instanceProfile)
	},
	SilenceUsage: true,
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Addr:   viper.GetString("addr"),
		Port:   viper.GetInt("port"),
		Data:   viper.GetString("data"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
	}
	instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
	instanceProfile.FromEnv()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if err := viper.UnmarshalKey("pricing", &instanceProfile.Pricing); err != nil {
			return nil, fmt.Errorf("failed to parse pricing from %s: %w", configFile, err)
		}
	}

	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func setupLogger(p *profile.Profile) {
	opts := &slog.HandlerOptions{Level: p.SlogLevel()}
	var handler slog.Handler
	if p.Mode == "prod" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(instanceProfile *profile.Profile) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storeInstance *store.Store
	if instanceProfile.IsPersistenceEnabled() {
		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return err
		}
		storeInstance = store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			storeInstance.Close()
			return err
		}
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		if storeInstance != nil {
			storeInstance.Close()
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Shutdown(context.Background())
		return nil
	})

	printGreetings(instanceProfile)
	return g.Wait()
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8000)
	viper.SetDefault("data", ".")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory for the sqlite database")
	rootCmd.PersistentFlags().String("driver", "", `database driver for metric persistence, "sqlite" or "postgres"; empty disables persistence`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("config", "", "optional YAML or TOML file overriding the pricing table")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "config"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("smartrouter")
	viper.AutomaticEnv()
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("Smart LLM Router %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprintf(os.Stderr, "Development mode is enabled\n")
		if p.IsPersistenceEnabled() {
			fmt.Fprintf(os.Stderr, "Driver: %s, DSN: %s\n", p.Driver, p.DSN)
		}
	}
	fmt.Printf("Classifier: %s\n", p.ClassifierMode)
	fmt.Printf("System 1 model: %s\n", p.FastModel)
	fmt.Printf("System 2 model: %s\n", p.AdvancedModel)
	if len(p.Addr) == 0 {
		fmt.Printf("Listening on port %d\n", p.Port)
	} else {
		fmt.Printf("Listening on %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
