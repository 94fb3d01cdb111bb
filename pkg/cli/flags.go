package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/logging"
)

// Option names accepted by each command.
var (
	serverOptions = []string{
		"port", "host", "configfile", "noParse", "pidfile", "logfile", "nologfile",
		"loglevel", "allowInjection", "localOnly", "ipWhitelist", "mock", "debug",
	}
	stopOptions   = []string{"pidfile", "loglevel"}
	saveOptions   = []string{"port", "host", "savefile", "removeProxies", "loglevel"}
	replayOptions = []string{"port", "host", "loglevel"}
)

const rcFileFlag = "rcfile"

// registerOptionFlags adds the canonical flags named by names, and their
// aliases, to fs. Flag defaults are left empty: the values that apply when a
// flag is absent come from cliconfig.Load.
func registerOptionFlags(fs *pflag.FlagSet, names []string) {
	defaults := cliconfig.Defaults()
	fs.String(rcFileFlag, "", "YAML file of option defaults (default: .mbrc.yaml in the working directory)")

	for _, name := range names {
		field, ok := cliconfig.LookupField(name)
		if !ok {
			panic("cli: unknown option " + name)
		}
		usage := field.Usage + defaultNote(defaults, name)
		addFlag(fs, field.Kind, name, "", usage)

		for _, alias := range cliconfig.AliasesFor(name) {
			addFlag(fs, field.Kind, alias.Name, alias.Shorthand, "alias for --"+name)
			_ = fs.MarkHidden(alias.Name)
		}
	}
}

func addFlag(fs *pflag.FlagSet, kind cliconfig.Kind, name, shorthand, usage string) {
	switch kind {
	case cliconfig.KindInt:
		fs.IntP(name, shorthand, 0, usage)
	case cliconfig.KindBool:
		fs.BoolP(name, shorthand, false, usage)
	default:
		fs.StringP(name, shorthand, "", usage)
	}
}

func defaultNote(d cliconfig.Options, name string) string {
	switch name {
	case "port":
		return " (default " + strconv.Itoa(d.Port) + ")"
	case "pidfile":
		return " (default " + d.PIDFile + ")"
	case "logfile":
		return " (default " + d.LogFile + ")"
	case "loglevel":
		return " (default " + d.LogLevel + ")"
	case "savefile":
		return " (default " + d.SaveFile + ")"
	case "ipWhitelist":
		return " (default " + cliconfig.DefaultWhitelist + ")"
	}
	return ""
}

// optionsFromFlags builds the Options of one invocation. Flags set on the
// command line override the base from cliconfig.Load; canonical names are
// applied first and aliases last, so an alias wins over its canonical flag.
func optionsFromFlags(fs *pflag.FlagSet, names []string, getenv func(string) string) (cliconfig.Options, error) {
	rcFile, _ := fs.GetString(rcFileFlag)
	opts, err := cliconfig.Load(rcFile, getenv)
	if err != nil {
		var cfgErr *cliconfig.ConfigError
		if errors.As(err, &cfgErr) {
			return cliconfig.Options{}, &UsageError{Err: err}
		}
		return cliconfig.Options{}, err
	}

	for _, name := range names {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if opts, err = opts.With(name, f.Value.String()); err != nil {
				return cliconfig.Options{}, &UsageError{Err: err}
			}
		}
	}
	for _, name := range names {
		for _, alias := range cliconfig.AliasesFor(name) {
			if f := fs.Lookup(alias.Name); f != nil && f.Changed {
				if opts, err = opts.With(name, f.Value.String()); err != nil {
					return cliconfig.Options{}, &UsageError{Err: err}
				}
			}
		}
	}

	if err := opts.Validate(); err != nil {
		return cliconfig.Options{}, &UsageError{Err: err}
	}
	if !logging.ValidLevel(opts.LogLevel) {
		return cliconfig.Options{}, usageErrorf("invalid loglevel %q: must be debug, info, warn or error", opts.LogLevel)
	}
	return opts, nil
}
