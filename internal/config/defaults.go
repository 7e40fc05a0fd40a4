package config

const (
	DefaultHost           = "localhost"
	DefaultPort           = 8090
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
)

// Default returns the configuration used before the file and environment
// are applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      DefaultHost,
			Port:      DefaultPort,
		},
		Directory: DirectoryConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}
