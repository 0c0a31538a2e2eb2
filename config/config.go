package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

type BackendConfig struct {
	// http or websocket
	Transport    string            `yaml:"transport"`
	BaseURL      string            `yaml:"base_url"`
	StreamPath   string            `yaml:"stream_path"`
	HealthPath   string            `yaml:"health_path,omitempty"`
	WebSocketURL string            `yaml:"websocket_url,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`

	// bounds the handshake and the wait for response headers, not the stream
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// read size of the http body, 0 means default
	ChunkSize int `yaml:"chunk_size,omitempty"`
}

type DecoderConfig struct {
	// report unknown event types instead of ignoring them
	StrictTypes bool `yaml:"strict_types"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// relative to the workspace dir
	File string `yaml:"file"`
}

type FilesConfig struct {
	MaxSize int64 `yaml:"max_size"`
}

// The configuration for tokkistream.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Decoder DecoderConfig `yaml:"decoder"`
	Files   FilesConfig   `yaml:"files"`
	Log     LogConfig     `yaml:"log"`

	// action name -> shortcut, e.g. stop: "esc"
	Keys map[string]string `yaml:"keys,omitempty"`
}

func BootstrapConfig() Config {
	return Config{
		Backend: BackendConfig{
			Transport:      TransportHTTP,
			BaseURL:        "http://127.0.0.1:8000",
			StreamPath:     "/api/chat/stream",
			HealthPath:     "/api/health",
			ConnectTimeout: 30 * time.Second,
		},
		Files: FilesConfig{
			MaxSize: 1 << 20,
		},
		Log: LogConfig{
			Level: "info",
			File:  "logs/tokkistream.log",
		},
	}
}

// LoadConfig overlays the workspace config file on the bootstrap config. A
// missing file is not an error.
func LoadConfig() (c Config, err error) {
	configPath, err := GetWorkspaceConfigPath()
	if err != nil {
		err = fmt.Errorf("failed to get config path: %w", err)
		return
	}

	return LoadConfigFile(configPath)
}

func LoadConfigFile(path string) (c Config, err error) {
	c = BootstrapConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = yaml.Unmarshal(content, &c)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal config file: %w", err)
		return
	}

	err = c.Validate()
	return
}

func (c *Config) Validate() error {
	switch c.Backend.Transport {
	case TransportHTTP, TransportWebSocket:
	case "":
		c.Backend.Transport = TransportHTTP
	default:
		return fmt.Errorf("unknown backend transport %q", c.Backend.Transport)
	}

	if c.Backend.BaseURL == "" && c.Backend.WebSocketURL == "" {
		return fmt.Errorf("backend base_url is required")
	}

	if c.Files.MaxSize <= 0 {
		c.Files.MaxSize = BootstrapConfig().Files.MaxSize
	}

	return nil
}
