package config

const (
	defaultDataDir        = "~/.local/share/kallisto"
	defaultLogDir         = "~/.local/share/kallisto/logs"
	defaultAPIBind        = "127.0.0.1:7410"
	defaultLockTTLSeconds = 600
	defaultTranscriptName = "TEC"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Cleaning: Cleaning{
			LockTTLSeconds: defaultLockTTLSeconds,
			TranscriptName: defaultTranscriptName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
