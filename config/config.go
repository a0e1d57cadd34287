package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/niksmo/shopcore/pkg/schema"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOP_CONFIG_FILE"

const (
	DriverMemory   = "memory"
	DriverLevelDB  = "leveldb"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type api struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type storage struct {
	Driver         string `mapstructure:"driver"`
	LevelDBPath    string `mapstructure:"leveldb_path"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
	SQLDB          string `mapstructure:"sql_db"`
}

type persistence struct {
	Async         bool `mapstructure:"async"`
	WriteAttempts int  `mapstructure:"write_attempts"`
}

type topics struct {
	ProductPurchases string `mapstructure:"product_purchases"`
}

type groups struct {
	Popularity string `mapstructure:"popularity"`
}

type tlsFiles struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Enabled reports whether all TLS files are set.
func (t tlsFiles) Enabled() bool {
	return t.CAFile != "" && t.CertFile != "" && t.KeyFile != ""
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	Partitions         int32    `mapstructure:"partitions"`
	ReplicationFactor  int16    `mapstructure:"replication_factor"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	Groups             groups   `mapstructure:"groups"`
	TLS                tlsFiles `mapstructure:"tls"`
}

// Enabled reports whether purchase events and popularity are on.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type user struct {
	ID string `mapstructure:"id"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	HTTPCORSOrigins    []string      `mapstructure:"http_cors_origins"`
	API                api           `mapstructure:"api"`
	Storage            storage       `mapstructure:"storage"`
	Persistence        persistence   `mapstructure:"persistence"`
	Broker             broker        `mapstructure:"broker"`
	User               user          `mapstructure:"user"`
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads, decodes and validates the config file at path.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", "127.0.0.1:8080")
	v.SetDefault("http_handler_timeout", "5s")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("storage.driver", DriverLevelDB)
	v.SetDefault("storage.leveldb_path", "shop.db")
	v.SetDefault("storage.redis_key_prefix", "shop:")
	v.SetDefault("persistence.write_attempts", 3)
	v.SetDefault("broker.topics.product_purchases", schema.DefaultPurchaseTopic)
	v.SetDefault("broker.groups.popularity", "popularity")
	v.SetDefault("broker.partitions", 3)
	v.SetDefault("broker.replication_factor", 3)
	v.SetDefault("user.id", "guest")
}

func (c Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url: required"))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverLevelDB:
		if c.Storage.LevelDBPath == "" {
			errs = append(errs, errors.New("storage.leveldb_path: required"))
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr: required"))
		}
	case DriverPostgres:
		if c.Storage.SQLDB == "" {
			errs = append(errs, errors.New("storage.sql_db: required"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"storage.driver: unknown driver %q", c.Storage.Driver,
		))
	}

	if c.Persistence.WriteAttempts < 1 {
		errs = append(errs, errors.New("persistence.write_attempts: must be at least 1"))
	}

	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New("broker.schema_registry_urls: required with seed_brokers"))
	}

	if c.Broker.Partitions < 1 || c.Broker.ReplicationFactor < 1 {
		errs = append(errs, errors.New(
			"broker.partitions, broker.replication_factor: must be at least 1",
		))
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	HTTPCORSOrigins=%q
	UserID=%q

	API:
	BaseURL=%q
	Timeout=%s

	Storage:
	Driver=%q
	LevelDBPath=%q
	RedisAddr=%q
	RedisDB=%d
	RedisKeyPrefix=%q
	Async=%t
	WriteAttempts=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Partitions=%d
	ReplicationFactor=%d
	TLS=%t
	Topics:
		ProductPurchases=%q
	Groups:
		Popularity=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		c.HTTPCORSOrigins,
		c.User.ID,
		c.API.BaseURL,
		c.API.Timeout,
		c.Storage.Driver,
		c.Storage.LevelDBPath,
		c.Storage.RedisAddr,
		c.Storage.RedisDB,
		c.Storage.RedisKeyPrefix,
		c.Persistence.Async,
		c.Persistence.WriteAttempts,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Partitions,
		c.Broker.ReplicationFactor,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.ProductPurchases,
		c.Broker.Groups.Popularity,
	)
}
