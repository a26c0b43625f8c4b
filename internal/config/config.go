package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Role constants
const (
	RoleCrew       = "CREW"       // Field crew member executing SOPs
	RoleSupervisor = "SUPERVISOR" // Supervisor who certifies and resolves challenges
)

// Config represents the flat fieldloop configuration
type Config struct {
	Version      string `json:"version"`
	Role         string `json:"role"`                      // "CREW" or "SUPERVISOR"
	CrewMemberID string `json:"crew_member_id,omitempty"`  // CREW-XXX
	ProjectID    string `json:"project_id,omitempty"`      // PROJ-XXX currently worked
	CurrentTask  string `json:"current_task_id,omitempty"` // TASK-XXX currently worked
}

// LoadConfig reads .fieldloop/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".fieldloop", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, ".fieldloop")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .fieldloop dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// IsSupervisorRole returns true if the role can certify crew members.
func IsSupervisorRole(role string) bool {
	return role == RoleSupervisor
}
