package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value type of an option.
type Kind int

// Option kinds.
const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Field describes one canonical option: its name, type, help text and the
// environment variable that can supply it.
type Field struct {
	Name  string
	Kind  Kind
	Usage string
	Env   string

	set func(o *Options, v string) error
}

// Alias is an alternate spelling of a canonical option. When both are given
// on the command line the alias value wins.
type Alias struct {
	Name      string
	Shorthand string
	Canonical string
}

var fields = []Field{
	{Name: "port", Kind: KindInt, Env: "MB_PORT", Usage: "admin API port", set: setInt(func(o *Options) *int { return &o.Port })},
	{Name: "host", Kind: KindString, Env: "MB_HOST", Usage: "bind address (default: all interfaces)", set: setString(func(o *Options) *string { return &o.Host })},
	{Name: "configfile", Kind: KindString, Env: "MB_CONFIGFILE", Usage: "file of imposters to load on startup (template-rendered)", set: setString(func(o *Options) *string { return &o.ConfigFile })},
	{Name: "noParse", Kind: KindBool, Usage: "load configfile without template rendering", set: setBool(func(o *Options) *bool { return &o.NoParse })},
	{Name: "pidfile", Kind: KindString, Env: "MB_PIDFILE", Usage: "PID lock file", set: setString(func(o *Options) *string { return &o.PIDFile })},
	{Name: "logfile", Kind: KindString, Env: "MB_LOGFILE", Usage: "log file", set: setString(func(o *Options) *string { return &o.LogFile })},
	{Name: "nologfile", Kind: KindBool, Usage: "do not write a log file", set: setBool(func(o *Options) *bool { return &o.NoLogFile })},
	{Name: "loglevel", Kind: KindString, Env: "MB_LOGLEVEL", Usage: "log level (debug, info, warn, error)", set: setString(func(o *Options) *string { return &o.LogLevel })},
	{Name: "allowInjection", Kind: KindBool, Usage: "allow imposters that use injection", set: setBool(func(o *Options) *bool { return &o.AllowInjection })},
	{Name: "localOnly", Kind: KindBool, Usage: "only accept admin requests from localhost", set: setBool(func(o *Options) *bool { return &o.LocalOnly })},
	{Name: "ipWhitelist", Kind: KindString, Usage: "pipe-delimited client address patterns allowed to call the admin API", set: setWhitelist},
	{Name: "mock", Kind: KindBool, Usage: "record requests received by imposters", set: setBool(func(o *Options) *bool { return &o.Mock })},
	{Name: "debug", Kind: KindBool, Usage: "enable debug logging of admin traffic", set: setBool(func(o *Options) *bool { return &o.Debug })},
	{Name: "savefile", Kind: KindString, Env: "MB_SAVEFILE", Usage: "destination of the save command", set: setString(func(o *Options) *string { return &o.SaveFile })},
	{Name: "removeProxies", Kind: KindBool, Usage: "strip proxy responses when saving", set: setBool(func(o *Options) *bool { return &o.RemoveProxies })},
}

// Aliases lists the alternate spellings accepted on the command line.
var Aliases = []Alias{
	{Name: "admin-port", Shorthand: "p", Canonical: "port"},
	{Name: "config-file", Shorthand: "c", Canonical: "configfile"},
	{Name: "no-parse", Canonical: "noParse"},
	{Name: "pid-file", Canonical: "pidfile"},
	{Name: "log-file", Canonical: "logfile"},
	{Name: "no-log-file", Canonical: "nologfile"},
	{Name: "log-level", Canonical: "loglevel"},
	{Name: "allow-injection", Canonical: "allowInjection"},
	{Name: "local-only", Canonical: "localOnly"},
	{Name: "ip-whitelist", Canonical: "ipWhitelist"},
	{Name: "save-file", Canonical: "savefile"},
	{Name: "remove-proxies", Canonical: "removeProxies"},
}

// LookupField returns the canonical option called name.
func LookupField(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// AliasesFor returns the aliases of the canonical option called name.
func AliasesFor(name string) []Alias {
	var out []Alias
	for _, a := range Aliases {
		if a.Canonical == name {
			out = append(out, a)
		}
	}
	return out
}

// With returns a copy of o with the canonical option name set from its
// string form.
func (o Options) With(name, value string) (Options, error) {
	f, ok := LookupField(name)
	if !ok {
		return o, fmt.Errorf("unknown option: %s", name)
	}
	c := o.Clone()
	if err := f.set(&c, value); err != nil {
		return o, fmt.Errorf("invalid value %q for %s: %w", value, name, err)
	}
	return c, nil
}

func setString(field func(*Options) *string) func(*Options, string) error {
	return func(o *Options, v string) error {
		*field(o) = v
		return nil
	}
}

func setInt(field func(*Options) *int) func(*Options, string) error {
	return func(o *Options, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(o) = n
		return nil
	}
}

func setBool(field func(*Options) *bool) func(*Options, string) error {
	return func(o *Options, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(o) = b
		return nil
	}
}

func setWhitelist(o *Options, v string) error {
	o.IPWhitelist = SplitWhitelist(v)
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
