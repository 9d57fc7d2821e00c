// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "hypevm" runs the DotHype name registry and serves its RPC endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/handlers"
	log "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/cmd/hypevm/version"
	"github.com/dothype/hypevm/vm"
)

const (
	envPrefix       = "HYPEVM"
	shutdownTimeout = 10 * time.Second
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:        "hypevm",
		Short:      "DotHype registry agent",
		SuggestFor: []string{"hypevm", "hype-vm"},
		PreRunE:    loadConfig,
		RunE:       runFunc,
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		version.NewCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "config file path (yaml, json or toml)")
	rootCmd.Flags().String("http-addr", "127.0.0.1:9660", "address the RPC server listens on")
	rootCmd.Flags().String("db-dir", "", "leveldb directory, in-memory when empty")
	rootCmd.Flags().String("genesis-file", "", "genesis file path, the default genesis when empty")
	rootCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringSlice("cors-origins", []string{"*"}, "allowed CORS origins")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hypevm failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// loadConfig layers the config file and HYPEVM_* environment variables over
// the flag and VM defaults.
func loadConfig(cmd *cobra.Command, args []string) error {
	var defaults vm.Config
	defaults.SetDefaults()
	viper.SetDefault("call-ttl", defaults.CallTTL)
	viper.SetDefault("prune-limit", defaults.PruneLimit)
	viper.SetDefault("prune-interval", defaults.PruneInterval)
	viper.SetDefault("full-prune-interval", defaults.FullPruneInterval)
	viper.SetDefault("compact-interval", defaults.CompactInterval)
	viper.SetDefault("activity-cache-size", defaults.ActivityCacheSize)
	viper.SetDefault("feed.url", defaults.Feed.URL)
	viper.SetDefault("feed.path", defaults.Feed.Path)
	viper.SetDefault("feed.ttl", defaults.Feed.TTL)
	viper.SetDefault("feed.timeout", defaults.Feed.Timeout)

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: failed to read %s", err, configFile)
	}
	log.Info("loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

func setupLogging(level string) error {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.LogfmtFormat())))
	return nil
}

func openDatabase(dir string) (database.Database, error) {
	if dir == "" {
		log.Warn("using in-memory database, state will not persist")
		return memdb.New(), nil
	}
	return leveldb.New(dir, nil, logging.NoLog{})
}

func loadGenesis(path string) (*chain.Genesis, error) {
	if path == "" {
		return chain.DefaultGenesis(), nil
	}
	return chain.LoadGenesis(path)
}

func runFunc(cmd *cobra.Command, args []string) error {
	if err := setupLogging(viper.GetString("log-level")); err != nil {
		return err
	}

	var cfg vm.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return err
	}
	g, err := loadGenesis(viper.GetString("genesis-file"))
	if err != nil {
		return err
	}
	db, err := openDatabase(viper.GetString("db-dir"))
	if err != nil {
		return err
	}
	instance, err := vm.New(cfg, g, db, vm.RealClock{})
	if err != nil {
		_ = db.Close()
		return err
	}
	instance.Start()

	hd, err := instance.CreateHandlers()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	for endpoint, h := range hd {
		mux.Handle(endpoint, h)
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(viper.GetStringSlice("cors-origins")),
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	srv := &http.Server{
		Addr:    viper.GetString("http-addr"),
		Handler: handlers.CombinedLoggingHandler(os.Stderr, cors(mux)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("serving hypevm", "addr", srv.Addr, "tld", g.TLD, "chainId", g.ChainID)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	serr := eg.Wait()
	if err := instance.Shutdown(); err != nil {
		log.Error("failed to shut down vm", "err", err)
	}
	return serr
}
