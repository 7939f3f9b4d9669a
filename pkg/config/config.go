// Package config loads environment-backed configuration structs.
//
// It combines github.com/joho/godotenv (optional .env file) with
// github.com/caarlos0/env/v11 (struct tag parsing) and caches each parsed
// struct by type, so every component can call Load for its own config
// without re-reading the environment.
//
//	type ServerConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil { ... }
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("nil pointer passed to config loader")
	ErrParsingConfig = errors.New("failed to parse environment into config")
)

var (
	dotenvOnce sync.Once

	mu     sync.Mutex
	cached = make(map[string]any)
)

// Load populates v from the process environment, reading a .env file from
// the working directory on first use if one exists. Each configuration type
// is parsed once per process; later calls return the cached copy.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// A missing .env file is normal outside local development.
		_ = godotenv.Load()
	})

	key := fmt.Sprintf("%T", *v)

	mu.Lock()
	defer mu.Unlock()

	if c, ok := cached[key]; ok {
		*v = c.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cached[key] = *v
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// ResetCache drops all cached configs. Intended for tests that mutate the
// environment between loads.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()
	cached = make(map[string]any)
}
