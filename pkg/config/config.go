// Package config persists user settings as config.json
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds user-tunable settings. The difficulty mapping uses
// string keys so the JSON file reads naturally; DifficultyTable
// converts it for the pipeline.
type Config struct {
	OutputDirectory   string            `json:"output_directory"`
	DifficultyMapping map[string]string `json:"difficulty_mapping"`
	AudioTargetFormat string            `json:"audio_target_format"`
	DeleteTempFiles   bool              `json:"delete_temp_files"`
}

// Default returns the settings written on first run
func Default() *Config {
	return &Config{
		OutputDirectory: "./output_bs_maps",
		DifficultyMapping: map[string]string{
			"0": "Easy",
			"1": "Easy",
			"2": "Normal",
			"3": "Hard",
			"4": "Expert",
			"5": "Expert",
			"6": "ExpertPlus",
		},
		AudioTargetFormat: "ogg",
		DeleteTempFiles:   true,
	}
}

// Load reads config.json from path, creating it with defaults when it
// does not exist yet.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the settings to path
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DifficultyTable converts the mapping to integer keys. Entries whose
// key is not an integer are skipped.
func (c *Config) DifficultyTable() map[int]string {
	table := make(map[int]string, len(c.DifficultyMapping))
	for k, v := range c.DifficultyMapping {
		if n, err := strconv.Atoi(k); err == nil {
			table[n] = v
		}
	}
	return table
}
