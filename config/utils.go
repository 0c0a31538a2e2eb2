package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	configFileName = "config.yaml"

	// overrides the default ~/.tokkistream workspace
	workspaceEnv = "TOKKISTREAM_HOME"
)

var (
	workspaceDir     string
	workspaceDirOnce sync.Once

	conf     Config
	confOnce sync.Once
)

// Init loads the config once. A broken config file is logged and the
// bootstrap config is used instead, so that onboard can still run.
func Init() {
	confOnce.Do(func() {
		var err error
		conf, err = LoadConfig()
		if err != nil {
			slog.Warn("[config] failed to load config, using defaults", "error", err)
			conf = BootstrapConfig()
		}
	})
}

func GetConfig() Config {
	Init()
	return conf
}

func GetWorkspaceDir() string {
	workspaceDirOnce.Do(func() {
		if dir := os.Getenv(workspaceEnv); dir != "" {
			workspaceDir = dir
			return
		}

		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		workspaceDir = filepath.Join(home, ".tokkistream")
	})

	return workspaceDir
}

func GetWorkspaceConfigPath() (string, error) {
	return filepath.Join(GetWorkspaceDir(), configFileName), nil
}

func GetConversationsDir() string {
	return filepath.Join(GetWorkspaceDir(), "conversations")
}
