package onboard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryanreadbooks/tokkistream/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var force bool

var OnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize tokkistream configuration.",
	Long:  "Initialize tokkistream configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runOnboard(args)
		if err != nil {
			return fmt.Errorf("failed to run onboard: %w", err)
		}

		return nil
	},
}

func init() {
	OnboardCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config without asking.")
}

func confirmOverwrite(what, path string) bool {
	if force {
		return true
	}

	fmt.Printf("%s already exists at %s, do you want to overwrite it? (y/n): ", what, path)
	var overwrite string
	fmt.Scanln(&overwrite)
	return overwrite == "y" || overwrite == "Y"
}

func bootstrapConfig(configPath string) error {
	// check file exists, ask user if they want to overwrite
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		if !confirmOverwrite("Config file", configPath) {
			return nil
		}
	}

	cfg := config.BootstrapConfig()
	output, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configPath, output, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", configPath)

	return nil
}

func runOnboard(_ []string) error {
	configPath, err := config.GetWorkspaceConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	workspaceDir := filepath.Dir(configPath)
	for _, dir := range []string{workspaceDir, config.GetConversationsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := bootstrapConfig(configPath); err != nil {
		return fmt.Errorf("failed to bootstrap config: %w", err)
	}

	return nil
}
