package logger

// ComponentConfig provides per-component log levels. Implemented by
// config.LoggingConfig; declared here as an interface to avoid an import
// cycle between the config and logger packages.
type ComponentConfig interface {
	GetComponentLevel(component string) string
	IsDevelopment() bool
}

// NewComponentLoggerFromConfig builds a logger for a named component,
// honoring any component-specific level override from the configuration.
// A nil config yields the default logger tagged with the component name.
func NewComponentLoggerFromConfig(component string, cfg ComponentConfig) *Logger {
	if cfg == nil {
		return GetDefaultLogger().WithComponent(component)
	}

	l, err := NewLogger(cfg.GetComponentLevel(component), cfg.IsDevelopment())
	if err != nil {
		return GetDefaultLogger().WithComponent(component)
	}

	return l.WithComponent(component)
}
