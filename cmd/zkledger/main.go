package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thesecretlab-dev/zkledger/cmd/zkledger/version"
	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/genesis"
	"github.com/thesecretlab-dev/zkledger/storage"
	"github.com/thesecretlab-dev/zkledger/vm"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath  string
	dbPath      string
	dbBackend   string
	genesisPath string
	rpcAddr     string
	encoding    string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:        "zkledger",
	Short:      "zkledger account runtime",
	SuggestFor: []string{"zkledger"},
	RunE:       runFunc,
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a JSON or YAML config file")
	rootCmd.Flags().StringVar(&dbPath, "db-path", "", "database location (empty keeps state in memory)")
	rootCmd.Flags().StringVar(&dbBackend, "db-backend", "", "on-disk database (leveldb|bolt)")
	rootCmd.Flags().StringVar(&genesisPath, "genesis", "", "path to a genesis file (empty uses the default programs)")
	rootCmd.Flags().StringVar(&rpcAddr, "rpc-addr", "", "JSON-RPC listen address")
	rootCmd.Flags().StringVar(&encoding, "encoding", "", "account encoding (packed|borsh)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level")

	rootCmd.AddCommand(
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zkledger failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func resolveConfig(cmd *cobra.Command) (vm.Config, error) {
	cfg, err := vm.LoadConfig(configPath)
	if err != nil {
		return vm.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("db-path") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("db-backend") {
		cfg.DBBackend = dbBackend
	}
	if flags.Changed("genesis") {
		cfg.GenesisPath = genesisPath
	}
	if flags.Changed("rpc-addr") {
		cfg.RPC.Addr = rpcAddr
	}
	if flags.Changed("encoding") {
		cfg.Encoding = encoding
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Validate()
}

func openDatabase(cfg vm.Config) (database.KeyValueReaderWriter, func() error, error) {
	if cfg.DBPath == "" {
		db := memdb.New()
		return db, db.Close, nil
	}
	switch cfg.DBBackend {
	case vm.BoltDBBackend:
		db, err := storage.OpenBoltDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt %s: %w", cfg.DBPath, err)
		}
		return db, db.Close, nil
	default:
		db, err := storage.OpenLevelDB(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open leveldb %s: %w", cfg.DBPath, err)
		}
		return db, db.Close, nil
	}
}

func loadGenesis(cfg vm.Config) (*genesis.Genesis, error) {
	if cfg.GenesisPath == "" {
		return genesis.Default(), nil
	}
	return genesis.Load(cfg.GenesisPath)
}

func runFunc(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger(consts.Name)
	if err != nil {
		return err
	}
	defer log.Stop()

	if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
		return fmt.Errorf("%w: failed to set fd limit correctly", err)
	}

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	v, err := vm.New(cfg, db, log, reg)
	if err != nil {
		return err
	}
	g, err := loadGenesis(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := v.InitializeGenesis(ctx, g); err != nil {
		return err
	}

	if !cfg.RPC.Enabled {
		log.Info("rpc disabled, waiting for shutdown")
		<-ctx.Done()
		return nil
	}
	return serve(ctx, log, cfg.RPC.Addr, v, reg)
}

func serve(ctx context.Context, log logging.Logger, addr string, v *vm.VM, reg *prometheus.Registry) error {
	rpcHandler, err := vm.NewJSONRPCHandler(v)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(vm.JSONRPCEndpoint, rpcHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("serving json-rpc",
			zap.String("addr", addr),
			zap.String("endpoint", vm.JSONRPCEndpoint),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
