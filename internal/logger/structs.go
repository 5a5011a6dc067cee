package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"          toml:"enabled"`
	UseConsoleWriter bool `mapstructure:"useConsoleWriter" toml:"useConsoleWriter"`
}

// RollingFile describes one lumberjack managed log file.
type RollingFile struct {
	Name       string `mapstructure:"name"       toml:"name"`
	MaxSize    int    `mapstructure:"maxSize"    toml:"maxSize"` // megabytes
	MaxBackups int    `mapstructure:"maxBackups" toml:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge"     toml:"maxAge"` // days
	Compress   bool   `mapstructure:"compress"   toml:"compress"`
}

// LogFile implements a file based logger.
// Every level group and the access log get their own rolling file below Path.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path"    toml:"path"`

	Access RollingFile `mapstructure:"access" toml:"access"`
	Error  RollingFile `mapstructure:"error"  toml:"error"`
	Info   RollingFile `mapstructure:"info"   toml:"info"`
	Trace  RollingFile `mapstructure:"trace"  toml:"trace"`
	Warn   RollingFile `mapstructure:"warn"   toml:"warn"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `mapstructure:"logLevel" toml:"logLevel"` // trace, debug, info, warn, error.
	LogEnv   string `mapstructure:"logEnv"   toml:"logEnv"`

	// EnableAccessLogToConsole writes the http access log to stdout.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool `mapstructure:"enableAccessLogToConsole" toml:"enableAccessLogToConsole"`
	ReportCaller             bool `mapstructure:"reportCaller"             toml:"reportCaller"`
	DisableCheckAlive        bool `mapstructure:"disableCheckAlive"        toml:"disableCheckAlive"` // do not log /checkalive calls

	AppName     string `mapstructure:"appName"     toml:"appName"`
	ServiceName string `mapstructure:"serviceName" toml:"serviceName"`

	Console Console `mapstructure:"console" toml:"console"`
	File    LogFile `mapstructure:"file"    toml:"file"`
}
