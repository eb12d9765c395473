// Package config loads newday settings from .newday.yaml and NEWDAY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is what the commands need to open a session.
type Config interface {
	// BasePath is the root of the document store.
	BasePath() string
	// UserID names the signed in user.
	UserID() string
	// SeedPlaceholders fills empty Most Important slots on rollover.
	SeedPlaceholders() bool
	// ServeAddr is where the ingestion API listens.
	ServeAddr() string
	// Origins are the browser origins the ingestion API allows.
	Origins() []string
}

const (
	keyPath         = "path"
	keyUser         = "user"
	keyPlaceholders = "rollover.placeholders"
	keyServeAddr    = "serve.addr"
	keyOrigins      = "serve.origins"
)

// Load reads .newday.yaml from $NEWDAY_CONFIG_PATH or the working directory.
// A missing file is fine; defaults apply.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault(keyPath, "~/.newday.db")
	v.SetDefault(keyUser, "local")
	v.SetDefault(keyPlaceholders, false)
	v.SetDefault(keyServeAddr, "127.0.0.1:8080")
	v.SetDefault(keyOrigins, []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetConfigName(".newday") // .yaml is implicit
	v.SetEnvPrefix("NEWDAY")
	v.AutomaticEnv()

	if override := os.Getenv("NEWDAY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	path, err := homedir.Expand(v.GetString(keyPath))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	return &fileConfig{
		Path:         path,
		User:         v.GetString(keyUser),
		Placeholders: v.GetBool(keyPlaceholders),
		Addr:         v.GetString(keyServeAddr),
		AllowOrigins: v.GetStringSlice(keyOrigins),
	}, nil
}

// Static is a Config built in code, for tests and embedding.
type Static = fileConfig

type fileConfig struct {
	Path         string   `json:"path"`
	User         string   `json:"user"`
	Placeholders bool     `json:"placeholders"`
	Addr         string   `json:"addr"`
	AllowOrigins []string `json:"origins"`
}

func (f *fileConfig) BasePath() string       { return f.Path }
func (f *fileConfig) UserID() string         { return f.User }
func (f *fileConfig) SeedPlaceholders() bool { return f.Placeholders }
func (f *fileConfig) ServeAddr() string      { return f.Addr }
func (f *fileConfig) Origins() []string      { return f.AllowOrigins }
