// Package settings loads the application configuration from the environment.
package settings

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/whhaicheng/DB-Showdown/internal/domain/config"
)

// Environment keys. Viper matches them case-insensitively against the
// upper-cased environment variable of the same name.
const (
	KeyMSSQLHost        = "mssql_host"
	KeyMSSQLPort        = "mssql_port"
	KeyMSSQLDatabase    = "mssql_database"
	KeyMSSQLUser        = "mssql_user"
	KeyMSSQLPassword    = "mssql_password"
	KeyMSSQLTrustServer = "mssql_trust_server_certificate"

	KeyClickHouseHost        = "clickhouse_host"
	KeyClickHousePort        = "clickhouse_port"
	KeyClickHouseDatabase    = "clickhouse_database"
	KeyClickHouseUser        = "clickhouse_user"
	KeyClickHousePassword    = "clickhouse_password"
	KeyClickHouseDialTimeout = "clickhouse_dial_timeout"

	KeyMaxOrderID   = "showdown_max_order_id"
	KeyKeyMode      = "showdown_key_mode"
	KeyCallTimeout  = "showdown_call_timeout"
	KeyParallel     = "showdown_parallel"
	KeySeed         = "showdown_seed"
	KeyRows         = "showdown_rows"
	KeyChunkSize    = "showdown_chunk_size"
	KeyWaitAttempts = "showdown_wait_attempts"
	KeyWaitDelay    = "showdown_wait_delay"
	KeyLogDir       = "showdown_log_dir"
	KeyLogLevel     = "showdown_log_level"
	KeyExportDir    = "showdown_export_dir"
	KeyMetricsAddr  = "showdown_metrics_addr"
)

// New returns a viper instance with every default registered and the
// environment bound. configFile, if set, is read on top of the defaults;
// the environment still wins over it.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, config.DefaultConfig())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// setDefaults registers the fallback of every key except KeyMaxOrderID,
// which falls back to the provisioned row count.
func setDefaults(v *viper.Viper, d *config.Config) {
	v.SetDefault(KeyMSSQLHost, d.SQLServer.Host)
	v.SetDefault(KeyMSSQLPort, d.SQLServer.Port)
	v.SetDefault(KeyMSSQLDatabase, d.SQLServer.Database)
	v.SetDefault(KeyMSSQLUser, d.SQLServer.Username)
	v.SetDefault(KeyMSSQLPassword, d.SQLServer.Password)
	v.SetDefault(KeyMSSQLTrustServer, d.SQLServer.TrustServerCertificate)

	v.SetDefault(KeyClickHouseHost, d.ClickHouse.Host)
	v.SetDefault(KeyClickHousePort, d.ClickHouse.Port)
	v.SetDefault(KeyClickHouseDatabase, d.ClickHouse.Database)
	v.SetDefault(KeyClickHouseUser, d.ClickHouse.Username)
	v.SetDefault(KeyClickHousePassword, d.ClickHouse.Password)
	v.SetDefault(KeyClickHouseDialTimeout, d.ClickHouse.DialTimeout)

	v.SetDefault(KeyKeyMode, string(d.Benchmark.KeyMode))
	v.SetDefault(KeyCallTimeout, d.Benchmark.CallTimeout)
	v.SetDefault(KeyParallel, d.Benchmark.Parallel)
	v.SetDefault(KeySeed, d.Benchmark.Seed)

	v.SetDefault(KeyRows, d.Provision.Rows)
	v.SetDefault(KeyChunkSize, d.Provision.ChunkSize)
	v.SetDefault(KeyWaitAttempts, d.Provision.WaitAttempts)
	v.SetDefault(KeyWaitDelay, d.Provision.WaitDelay)

	v.SetDefault(KeyLogDir, d.Log.Dir)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyExportDir, d.ExportDir)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

// Load builds and validates the configuration from v.
func Load(v *viper.Viper) (*config.Config, error) {
	cfg := &config.Config{}

	cfg.SQLServer.Host = v.GetString(KeyMSSQLHost)
	cfg.SQLServer.Port = v.GetInt(KeyMSSQLPort)
	cfg.SQLServer.Database = v.GetString(KeyMSSQLDatabase)
	cfg.SQLServer.Username = v.GetString(KeyMSSQLUser)
	cfg.SQLServer.Password = v.GetString(KeyMSSQLPassword)
	cfg.SQLServer.TrustServerCertificate = v.GetBool(KeyMSSQLTrustServer)

	cfg.ClickHouse.Host = v.GetString(KeyClickHouseHost)
	cfg.ClickHouse.Port = v.GetInt(KeyClickHousePort)
	cfg.ClickHouse.Database = v.GetString(KeyClickHouseDatabase)
	cfg.ClickHouse.Username = v.GetString(KeyClickHouseUser)
	cfg.ClickHouse.Password = v.GetString(KeyClickHousePassword)
	cfg.ClickHouse.DialTimeout = v.GetDuration(KeyClickHouseDialTimeout)

	cfg.Provision = config.ProvisionConfig{
		Rows:         v.GetInt64(KeyRows),
		ChunkSize:    v.GetInt(KeyChunkSize),
		WaitAttempts: v.GetUint(KeyWaitAttempts),
		WaitDelay:    v.GetDuration(KeyWaitDelay),
		Seed:         v.GetInt64(KeySeed),
	}

	cfg.Benchmark = config.BenchmarkConfig{
		MaxOrderID:  cfg.Provision.Rows,
		KeyMode:     config.KeyMode(strings.ToLower(v.GetString(KeyKeyMode))),
		CallTimeout: v.GetDuration(KeyCallTimeout),
		Parallel:    v.GetBool(KeyParallel),
		Seed:        v.GetInt64(KeySeed),
	}
	if v.IsSet(KeyMaxOrderID) {
		cfg.Benchmark.MaxOrderID = v.GetInt64(KeyMaxOrderID)
	}

	cfg.Log = config.LogConfig{
		Dir:   v.GetString(KeyLogDir),
		Level: strings.ToLower(v.GetString(KeyLogLevel)),
	}
	cfg.ExportDir = v.GetString(KeyExportDir)
	cfg.MetricsAddr = v.GetString(KeyMetricsAddr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.UsesPlaceholderPassword() {
		slog.Warn("Settings: a backend still uses the built-in placeholder password; set MSSQL_PASSWORD and CLICKHOUSE_PASSWORD")
	}
	return cfg, nil
}

// LoadFromEnv is New followed by Load.
func LoadFromEnv(configFile string) (*config.Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return Load(v)
}
