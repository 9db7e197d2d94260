// Package config locates and parses tempura configuration files and
// resolves the task store location from them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFileName is the name of the project configuration file
	ConfigFileName = "tempura.toml"

	// DefaultTasksDir is the dotfile-style directory holding the task
	// store, relative to the project root
	DefaultTasksDir = ".tasks"

	// DefaultTasksFileName is the default task store filename
	DefaultTasksFileName = "tasks.json"
)

// ProjectConfig represents the project-level configuration from tempura.toml
type ProjectConfig struct {
	Project string
	// Root is the directory containing tempura.toml; relative task file
	// paths resolve against it.
	Root      string
	TasksFile string

	// Track whether the tasks file was explicitly set in the config file
	tasksFileExplicitlySet bool
}

// projectConfigFile represents the raw TOML structure
type projectConfigFile struct {
	Project string      `toml:"project"`
	Tasks   tasksConfig `toml:"tasks"`
}

// tasksConfig represents the [tasks] section in TOML
type tasksConfig struct {
	File string `toml:"file"`
}

// DiscoverProjectConfig finds and parses the tempura.toml file by traversing
// up the directory tree from the current working directory.
func DiscoverProjectConfig() (*ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return discoverProjectConfigFrom(cwd)
}

// discoverProjectConfigFrom searches for tempura.toml starting from the given directory
func discoverProjectConfigFrom(startDir string) (*ProjectConfig, error) {
	dir := startDir

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return ParseProjectConfig(configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return nil, errors.New("No tempura.toml found. Run 'tk init <name>' to create one.")
		}
		dir = parent
	}
}

// ParseProjectConfig parses the tempura.toml file at the given path
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig projectConfigFile
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	// Validate required fields
	if rawConfig.Project == "" {
		return nil, errors.New("project name cannot be empty")
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg := &ProjectConfig{
		Project: rawConfig.Project,
		Root:    root,
	}

	if rawConfig.Tasks.File != "" {
		cfg.TasksFile = rawConfig.Tasks.File
		cfg.tasksFileExplicitlySet = true
	}

	return cfg, nil
}

// TasksFileExplicitlySet returns true if the tasks file was explicitly set
// in the config file
func (c *ProjectConfig) TasksFileExplicitlySet() bool {
	return c.tasksFileExplicitlySet
}
