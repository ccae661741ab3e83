package logger

// Console implements a console based logger.
type Console struct {
	Enabled bool
	// UseConsoleWriter switches from JSON lines to zerolog's human readable output.
	UseConsoleWriter bool
}

// Rotation configures one lumberjack rolled log file.
type Rotation struct {
	Name       string // file name inside LogFile.Path
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LogFile implements a file based logger with one file per level group.
type LogFile struct {
	Enabled bool
	Path    string

	Access Rotation
	Error  Rotation
	Info   Rotation
	Trace  Rotation
	Warn   Rotation
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole writes the HTTP access log to the console too.
	// Has no effect while Console.Enabled is false.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	// SkipPaths are request paths the access log ignores, e.g. /healthz.
	SkipPaths []string

	AppName     string
	ServiceName string

	Console Console
	File    LogFile
}
