package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the process configuration. Every flag can also be supplied as
// an environment variable with the AUCTION_ prefix (dashes become
// underscores), e.g. AUCTION_MONGO_URI.
type Config struct {
	ServerAddr    string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	TokenTTL      time.Duration
	SweepInterval time.Duration
}

// Load parses flags and environment into a Config. Intended to be called
// once, from main.
func Load() Config {
	// pick up a local .env if present
	_ = godotenv.Load()

	pflag.String("server-addr", ":8080", "listen address for the HTTP server")
	pflag.String("mongo-uri", "", "MongoDB connection URI; empty runs the in-memory store")
	pflag.String("mongo-database", "auction_trading", "MongoDB database name")
	pflag.String("jwt-secret", "", "HMAC secret for bearer tokens")
	pflag.Duration("token-ttl", 24*time.Hour, "bearer token lifetime")
	pflag.Duration("sweep-interval", 60*time.Second, "cadence of the lifecycle sweep")

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUCTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return Config{
		ServerAddr:    viper.GetString("server-addr"),
		MongoURI:      viper.GetString("mongo-uri"),
		MongoDatabase: viper.GetString("mongo-database"),
		JWTSecret:     viper.GetString("jwt-secret"),
		TokenTTL:      viper.GetDuration("token-ttl"),
		SweepInterval: viper.GetDuration("sweep-interval"),
	}
}

// Validate reports whether the configuration is complete enough to start
func (c Config) Validate() bool {
	return c.ServerAddr != "" && c.JWTSecret != ""
}
