package config

// Config interface defines the basic configuration contract
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener is notified after a watched configuration file was
// reloaded, validated and stored.
type ConfigChangeListener interface {
	OnConfigChanged(configName string, newConfig, oldConfig Config) error
}
