package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFile is the name of the user keybinding file inside the data directory
const ConfigFile = "keybinds.json"

// Unbind as an action removes the key from the context
const Unbind = "none"

// ErrInvalidConfig is returned for unknown contexts, unknown actions or empty keys
var ErrInvalidConfig = errors.New("invalid keybinding")

// Config maps context -> key -> action name. User bindings override the defaults.
type Config map[string]map[string]string

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}
	return config, nil
}

// ApplyConfig validates config and applies it to registry. Nothing is
// applied when any entry is invalid.
func ApplyConfig(registry *Registry, config Config) error {
	known := knownActions()
	var problems []string
	for contextName, bindings := range config {
		if !IsKnownContext(Context(contextName)) {
			problems = append(problems, fmt.Sprintf("unknown context '%s'", contextName))
			continue
		}
		for key, actionName := range bindings {
			if key == "" {
				problems = append(problems, fmt.Sprintf("empty key in context '%s'", contextName))
				continue
			}
			if actionName == Unbind {
				continue
			}
			if _, ok := known[Action(actionName)]; !ok {
				problems = append(problems, fmt.Sprintf("unknown action '%s' for key '%s' in context '%s'", actionName, key, contextName))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	for contextName, bindings := range config {
		for key, actionName := range bindings {
			if actionName == Unbind {
				registry.Unregister(Context(contextName), key)
				continue
			}
			registry.Register(Context(contextName), key, Action(actionName))
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with the user file at
// configPath applied when it exists.
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ConfigFile, err)
	}
	if err := ApplyConfig(registry, config); err != nil {
		return nil, err
	}
	return registry, nil
}
