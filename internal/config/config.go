// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type TokenStoreType string

const (
	TokenStoreFile     TokenStoreType = "file"
	TokenStoreValKey   TokenStoreType = "valkey"
	TokenStorePostgres TokenStoreType = "postgres"
)

var (
	ErrUnknownTokenStore = errors.New("unknown token store type")
	ErrInvalidBackendURL = errors.New("invalid backend base URL")
	ErrInvalidPageSize   = errors.New("posts per page must be positive")
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP       HTTPServer `yaml:"http"`
	Backend    Backend    `yaml:"backend"`
	TokenStore TokenStore `yaml:"tokenStore"`
	Views      Views      `yaml:"views"`

	Database Database `yaml:"database"`
	ValKey   ValKey   `yaml:"valkey"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// Backend locates the remote blog backend.
type Backend struct {
	BaseURL string        `yaml:"baseURL" default:"https://blog-backend-xlw9.onrender.com"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// TokenStore selects where the session token survives restarts.
type TokenStore struct {
	Type TokenStoreType `yaml:"type" default:"file"`
	File FileStore      `yaml:"file"`
}

type FileStore struct {
	// Path may reference environment variables.
	Path string `yaml:"path" default:"$HOME/.blog-client/session.yaml"`
}

type Views struct {
	PostsPerPage    int           `yaml:"postsPerPage" default:"9"`
	ProfileCacheTTL time.Duration `yaml:"profileCacheTTL" default:"5m"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"blog-client"`
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.TokenStore.Type {
	case TokenStoreFile, TokenStoreValKey, TokenStorePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTokenStore, c.TokenStore.Type)
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBackendURL, c.Backend.BaseURL)
	}

	if c.Views.PostsPerPage <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.Views.PostsPerPage)
	}

	return nil
}
