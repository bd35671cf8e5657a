package config

// This file defines a Redis client constructor for the application.  Redis
// backs the optional login-row cache in front of the token store.  The
// client parameters are loaded from environment variables.  If connection
// fails during startup, the function returns nil and callers should degrade
// gracefully by going to the database directly.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (takes precedence if both host/port and addr are set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1" (certificates verified)
//   REDIS_TLS_SKIP_VERIFY – additionally disable certificate verification
// The returned client may be nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	pwd := os.Getenv("REDIS_PASSWORD")
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	tlsConf := redisTLSConfig(os.Getenv("REDIS_TLS"), os.Getenv("REDIS_TLS_SKIP_VERIFY"))
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  pwd,
		DB:        dbNum,
		TLSConfig: tlsConf,
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// redisTLSConfig builds the TLS configuration from the REDIS_TLS and
// REDIS_TLS_SKIP_VERIFY values.  TLS is off unless requested.  When it
// is on, server certificates are verified; skipping verification must
// be asked for separately, since a spoofed Redis would be handed every
// live session token.
func redisTLSConfig(tlsEnv, skipVerifyEnv string) *tls.Config {
	if !envFlag(tlsEnv) {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: envFlag(skipVerifyEnv)}
}

// envFlag interprets an environment value as a boolean switch.
func envFlag(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
