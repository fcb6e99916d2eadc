package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Title: "My Literate Documents",
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Clean:     true,
		},
		Render: RenderOptions{
			Cache:         true,
			Digits:        DefaultDigits,
			CodeFolding:   DefaultCodeFolding,
			CommentMarker: DefaultCommentMarker,
		},
		Cache: CacheConfig{Path: DefaultCachePath},
		Engines: map[string][]string{
			"python": {"python3", "-"},
			"sh":     {"sh", "-s"},
		},
		Preview: PreviewConfig{
			Port:            DefaultPreviewPort,
			RebuildInterval: "5m",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
