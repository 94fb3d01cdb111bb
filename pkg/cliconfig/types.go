// Package cliconfig builds the Options value that drives a single mb invocation.
//
// Options are assembled once per process from these sources, highest
// priority first:
//  1. Command-line flags (aliases win over canonical names)
//  2. Environment variables (MB_PORT, MB_PIDFILE, ...)
//  3. The rc file (.mbrc.yaml in the working directory, or --rcfile)
//  4. Default values
//
// Every step returns a new Options value; nothing mutates a shared instance.
package cliconfig

import (
	"net"
	"strconv"
	"strings"
)

// Options is the immutable configuration of one mb invocation.
type Options struct {
	// Network binding
	Port        int      `yaml:"port" json:"port"`
	Host        string   `yaml:"host,omitempty" json:"host,omitempty"`
	IPWhitelist []string `yaml:"ipWhitelist,omitempty" json:"ipWhitelist,omitempty"`
	LocalOnly   bool     `yaml:"localOnly" json:"localOnly"`

	// Server behavior
	AllowInjection bool `yaml:"allowInjection" json:"allowInjection"`
	Mock           bool `yaml:"mock" json:"mock"`
	Debug          bool `yaml:"debug" json:"debug"`

	// Files
	ConfigFile string `yaml:"configfile,omitempty" json:"configfile,omitempty"`
	PIDFile    string `yaml:"pidfile" json:"pidfile"`
	LogFile    string `yaml:"logfile" json:"logfile"`
	NoLogFile  bool   `yaml:"nologfile" json:"nologfile"`
	LogLevel   string `yaml:"loglevel" json:"loglevel"`
	SaveFile   string `yaml:"savefile" json:"savefile"`
	RCFile     string `yaml:"-" json:"rcfile,omitempty"`

	// NoParse disables template rendering of the config file.
	NoParse       bool `yaml:"noParse" json:"noParse"`
	RemoveProxies bool `yaml:"removeProxies" json:"removeProxies"`

	// TemplateHelpers are the helper names the config renderer recognizes.
	// "inject" is kept as a legacy spelling of "stringify".
	TemplateHelpers []string `yaml:"-" json:"-"`
}

// AdminURL returns the base URL of the admin API described by o.
// Wildcard and empty hosts are reached through localhost.
func (o Options) AdminURL() string {
	host := o.Host
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(o.Port))
}

// ListenAddress returns the address the admin server binds.
func (o Options) ListenAddress() string {
	return net.JoinHostPort(strings.Trim(o.Host, "[]"), strconv.Itoa(o.Port))
}

// RenderTemplates reports whether the config file is template-rendered.
func (o Options) RenderTemplates() bool {
	return !o.NoParse
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	c := o
	if o.IPWhitelist != nil {
		c.IPWhitelist = append([]string(nil), o.IPWhitelist...)
	}
	if o.TemplateHelpers != nil {
		c.TemplateHelpers = append([]string(nil), o.TemplateHelpers...)
	}
	return c
}

// SplitWhitelist splits a pipe-delimited ipWhitelist value into patterns.
// Empty segments are dropped.
func SplitWhitelist(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, "|") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
