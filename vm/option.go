package vm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v3"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/schema"
)

const (
	defaultRPCAddr  = "127.0.0.1:9650"
	defaultLogLevel = "info"

	LevelDBBackend = "leveldb"
	BoltDBBackend  = "bolt"
)

var ErrUnknownDBBackend = errors.New("unknown db backend")

type Config struct {
	// Encoding selects the account byte layout: "packed" or "borsh".
	Encoding string `json:"encoding" yaml:"encoding"`
	// DBPath is the database location. Empty keeps state in memory.
	DBPath      string    `json:"dbPath" yaml:"dbPath"`
	DBBackend   string    `json:"dbBackend" yaml:"dbBackend"`
	LogLevel    string    `json:"logLevel" yaml:"logLevel"`
	GenesisPath string    `json:"genesisPath" yaml:"genesisPath"`
	RPC         RPCConfig `json:"rpc" yaml:"rpc"`

	MetricsMaxAccounts int `json:"metricsMaxAccounts" yaml:"metricsMaxAccounts"`
}

type RPCConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

func NewDefaultConfig() Config {
	return Config{
		Encoding:  schema.PackedName,
		DBBackend: LevelDBBackend,
		LogLevel:  defaultLogLevel,
		RPC: RPCConfig{
			Enabled: true,
			Addr:    defaultRPCAddr,
		},
		MetricsMaxAccounts: actions.DefaultMetricsMaxAccounts,
	}
}

// LoadConfig reads the config at path over the defaults, applies
// environment overrides and validates the result. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON. An empty path skips the
// file.
func LoadConfig(path string) (Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		unmarshal := json.Unmarshal
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			unmarshal = yaml.Unmarshal
		}
		if err := unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg = resolveConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveConfig(cfg Config) Config {
	if v, ok := getEnv("ZKLEDGER_ENCODING"); ok {
		cfg.Encoding = v
	}
	if v, ok := getEnv("ZKLEDGER_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnv("ZKLEDGER_DB_BACKEND"); ok {
		cfg.DBBackend = v
	}
	if v, ok := getEnv("ZKLEDGER_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := parseEnvBool("ZKLEDGER_RPC_ENABLED"); ok {
		cfg.RPC.Enabled = v
	}
	if v, ok := getEnv("ZKLEDGER_RPC_ADDR"); ok {
		cfg.RPC.Addr = v
	}
	if v, ok := getEnv("ZKLEDGER_GENESIS_PATH"); ok {
		cfg.GenesisPath = v
	}
	return cfg
}

func (c Config) Validate() error {
	if _, err := schema.ByName(c.Encoding); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.DBBackend {
	case "", LevelDBBackend, BoltDBBackend:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBBackend, c.DBBackend)
	}
	if c.RPC.Enabled && strings.TrimSpace(c.RPC.Addr) == "" {
		return fmt.Errorf("rpc enabled without an address")
	}
	if c.MetricsMaxAccounts < 0 {
		return fmt.Errorf("invalid metricsMaxAccounts %d", c.MetricsMaxAccounts)
	}
	return nil
}

func (c Config) Level() (logging.Level, error) {
	if c.LogLevel == "" {
		return logging.Info, nil
	}
	return logging.ToLevel(c.LogLevel)
}

// NewLogger builds a console logger at the configured level.
func (c Config) NewLogger(name string) (logging.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(name, logging.NewWrappedCore(level, os.Stdout, logging.Colors.ConsoleEncoder())), nil
}

func parseEnvBool(name string) (bool, bool) {
	v, ok := getEnv(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func getEnv(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", false
	}
	return v, true
}
