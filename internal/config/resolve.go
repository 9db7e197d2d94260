package config

import (
	"os"
	"path/filepath"
)

// ResolvedConfig represents the final merged configuration with all
// precedence rules applied. Precedence order (highest to lowest):
// 1. Project config (tempura.toml, [tasks] file)
// 2. Global config (~/.tempura/config.toml, [tasks] file)
// 3. Built-in default (<project root>/.tasks/tasks.json)
type ResolvedConfig struct {
	Project string
	Root    string
	// TasksFile is the absolute path of the backing JSON document.
	TasksFile string
}

// ResolveConfig discovers the project config, loads the global config,
// and merges them according to precedence rules.
func ResolveConfig() (*ResolvedConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return ResolveConfigWithHome(homeDir)
}

// ResolveConfigWithHome resolves config using a specified home directory.
// This is useful for testing.
func ResolveConfigWithHome(homeDir string) (*ResolvedConfig, error) {
	// Step 1: Discover project config (required)
	projectCfg, err := DiscoverProjectConfig()
	if err != nil {
		return nil, err
	}

	// Step 2: Load global config (optional, errors are not ignored for invalid files)
	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	// Step 3: Merge with precedence (defaults -> global -> project)
	tasksFile := filepath.Join(DefaultTasksDir, DefaultTasksFileName)
	if globalCfg.TasksFile != "" {
		tasksFile = globalCfg.TasksFile
	}
	if projectCfg.TasksFileExplicitlySet() {
		tasksFile = projectCfg.TasksFile
	}

	// Relative paths are anchored at the project root, never the cwd the
	// command happened to run from.
	if !filepath.IsAbs(tasksFile) {
		tasksFile = filepath.Join(projectCfg.Root, tasksFile)
	}

	return &ResolvedConfig{
		Project:   projectCfg.Project,
		Root:      projectCfg.Root,
		TasksFile: tasksFile,
	}, nil
}
