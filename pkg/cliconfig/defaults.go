package cliconfig

// DefaultPort is the default admin API port.
const DefaultPort = 2525

// DefaultPIDFile is the default PID lock location.
const DefaultPIDFile = "mb.pid"

// DefaultLogFile is the default log file location.
const DefaultLogFile = "mb.log"

// DefaultSaveFile is the default destination of the save command.
const DefaultSaveFile = "mb.json"

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultWhitelist accepts every client address.
const DefaultWhitelist = "*"

// DefaultTemplateHelpers are the config template helper names.
var DefaultTemplateHelpers = []string{"stringify", "inject"}

// Defaults returns the Options used when no other source sets a value.
func Defaults() Options {
	return Options{
		Port:            DefaultPort,
		IPWhitelist:     []string{DefaultWhitelist},
		PIDFile:         DefaultPIDFile,
		LogFile:         DefaultLogFile,
		LogLevel:        DefaultLogLevel,
		SaveFile:        DefaultSaveFile,
		TemplateHelpers: append([]string(nil), DefaultTemplateHelpers...),
	}
}
