package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost:8000",
		Timeout:      30000, // 30 seconds
		Retries:      3,
		RetryDelay:   500, // milliseconds
		RejectStatus: 400,
		MaxRedirects: 10,
		Reporters:    []string{"console"},
		Concurrency:  4,
	}
}
