package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Index  IndexConfig
	Flock  FlockConfig
}

type ServerConfig struct {
	Addr string
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	SSLMode  string
	Host     string
	Port     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// IndexConfig holds the defaults applied to point sets that do not carry
// their own build parameters.
type IndexConfig struct {
	MaxEntries       int
	MinCellSize      float64
	Technique        string
	MaxRetries       int
	GeohashPrecision uint
}

type FlockConfig struct {
	Vision        float64
	MaxNeighbors  int
	MaxEntries    int
	MinCellSize   float64
	ExactDistance bool
}

// DSN renders the connection in the URL form golang-migrate expects.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

var Cfg *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.dbname", "quadtree")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("index.maxentries", 4)
	v.SetDefault("index.mincellsize", 1.0)
	v.SetDefault("index.technique", "quadtree")
	v.SetDefault("index.maxretries", 3)
	v.SetDefault("index.geohashprecision", 2)

	v.SetDefault("flock.vision", 35.0)
	v.SetDefault("flock.maxneighbors", 10)
	v.SetDefault("flock.maxentries", 1)
	v.SetDefault("flock.mincellsize", 1.0)
	v.SetDefault("flock.exactdistance", false)
}

// Load reads config.yaml from the given directories. A missing file is not
// an error; defaults and environment variables (DB_HOST, REDIS_ADDR, ...)
// still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		log.Println("No config file found, using defaults.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func InitConfig() {
	cfg, err := Load(".")
	if err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
	Cfg = cfg
}
