package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigManager interface for configuration management
type ConfigManager interface {
	LoadConfig(configName string, config Config) error
	GetConfig(configName string) (Config, error)
	RegisterValidator(configName string, validator ValidatorFunc)
	RegisterHook(configName string, hook HookFunc)
	AddChangeListener(listener ConfigChangeListener)
	SetBasePath(path string)
	SetEnvironment(env string)
	Close() error
}

// ValidatorFunc configuration validation function
type ValidatorFunc func(Config) error

// HookFunc configuration change hook function
type HookFunc func(oldVal, newVal Config) error

// configManager implementation of ConfigManager interface
type configManager struct {
	mu         sync.RWMutex
	configs    map[string]Config
	watchers   map[string]*fsnotify.Watcher
	validators map[string]ValidatorFunc
	hooks      map[string][]HookFunc
	listeners  []ConfigChangeListener
	basePath   string
	env        string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() ConfigManager {
	return &configManager{
		configs:    make(map[string]Config),
		watchers:   make(map[string]*fsnotify.Watcher),
		validators: make(map[string]ValidatorFunc),
		hooks:      make(map[string][]HookFunc),
		basePath:   "./configs",
		env:        "development",
	}
}

// newViper builds a viper instance bound to the named YAML file under the
// base path and the environment sub directory.
func (cm *configManager) newViper(configName string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	// viper takes the first match, so the environment directory goes first
	v.AddConfigPath(fmt.Sprintf("%s/%s", cm.basePath, cm.env))
	v.AddConfigPath(cm.basePath)

	// Environment variables override file values, e.g. ROUTER_CANONICALPROTOCOL
	v.AutomaticEnv()
	v.SetEnvPrefix(strings.ToUpper(configName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// LoadConfig loads configuration from file
func (cm *configManager) LoadConfig(configName string, config Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	v := cm.newViper(configName)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config failed: %w", err)
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshal config failed: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("validate config failed: %w", err)
	}
	if validator, exists := cm.validators[configName]; exists {
		if err := validator(config); err != nil {
			return fmt.Errorf("validate config failed: %w", err)
		}
	}

	cm.configs[configName] = config

	if err := cm.watchConfigFile(configName, v); err != nil {
		return fmt.Errorf("watch config file failed: %w", err)
	}

	return nil
}

// GetConfig retrieves a previously loaded configuration
func (cm *configManager) GetConfig(configName string) (Config, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	config, exists := cm.configs[configName]
	if !exists {
		return nil, fmt.Errorf("config %s not found", configName)
	}

	return config, nil
}

// RegisterValidator registers configuration validator
func (cm *configManager) RegisterValidator(configName string, validator ValidatorFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.validators[configName] = validator
}

// RegisterHook registers configuration change hook
func (cm *configManager) RegisterHook(configName string, hook HookFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.hooks[configName] = append(cm.hooks[configName], hook)
}

// AddChangeListener registers a listener notified on every successful reload
func (cm *configManager) AddChangeListener(listener ConfigChangeListener) {
	if listener == nil {
		return
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.listeners = append(cm.listeners, listener)
}

// SetBasePath sets base path for configuration files
func (cm *configManager) SetBasePath(path string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.basePath = path
}

// SetEnvironment sets environment for configuration
func (cm *configManager) SetEnvironment(env string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.env = env
}

// watchConfigFile watches configuration file for changes
func (cm *configManager) watchConfigFile(configName string, v *viper.Viper) error {
	configFile := v.ConfigFileUsed()
	if configFile == "" {
		return nil
	}
	if _, exists := cm.watchers[configName]; exists {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	cm.watchers[configName] = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					cm.reloadConfig(configName)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Printf("config watcher error: %v\n", err)
			}
		}
	}()

	return watcher.Add(configFile)
}

// reloadConfig reloads configuration when file changes
func (cm *configManager) reloadConfig(configName string) {
	cm.mu.Lock()

	oldConfig, exists := cm.configs[configName]
	if !exists {
		cm.mu.Unlock()
		return
	}

	// Create new config instance (preserve original type via reflection)
	newConfig := reflect.New(reflect.TypeOf(oldConfig).Elem()).Interface().(Config)

	v := cm.newViper(configName)
	if err := v.ReadInConfig(); err != nil {
		// keep using old config
		fmt.Printf("reloadConfig: failed to read config %s: %v\n", configName, err)
		cm.mu.Unlock()
		return
	}

	if err := v.Unmarshal(newConfig); err != nil {
		fmt.Printf("reloadConfig: failed to unmarshal config %s: %v\n", configName, err)
		cm.mu.Unlock()
		return
	}

	if err := newConfig.Validate(); err != nil {
		fmt.Printf("reloadConfig: validation failed for config %s: %v\n", configName, err)
		cm.mu.Unlock()
		return
	}
	if validator, exists := cm.validators[configName]; exists {
		if err := validator(newConfig); err != nil {
			fmt.Printf("reloadConfig: validation failed for config %s: %v\n", configName, err)
			cm.mu.Unlock()
			return
		}
	}

	for _, hook := range cm.hooks[configName] {
		if err := hook(oldConfig, newConfig); err != nil {
			fmt.Printf("reloadConfig: hook failed for config %s: %v\n", configName, err)
			cm.mu.Unlock()
			return
		}
	}

	cm.configs[configName] = newConfig
	listeners := append([]ConfigChangeListener(nil), cm.listeners...)
	cm.mu.Unlock()

	// Listeners run outside the lock so they may call GetConfig.
	cm.notifyListeners(configName, newConfig, oldConfig, listeners)
}

func (cm *configManager) notifyListeners(configName string, newConfig, oldConfig Config, listeners []ConfigChangeListener) {
	for _, l := range listeners {
		if err := l.OnConfigChanged(configName, newConfig, oldConfig); err != nil {
			fmt.Printf("reloadConfig: listener failed for config %s: %v\n", configName, err)
		}
	}
}

// Close closes the configuration manager
func (cm *configManager) Close() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, watcher := range cm.watchers {
		if err := watcher.Close(); err != nil {
			return err
		}
		delete(cm.watchers, name)
	}

	return nil
}
