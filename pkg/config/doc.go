// Package config loads the imposters config file and pushes it to a running
// server.
//
// A config file holds either a bare list of imposters, a single imposter, or
// an object with an "imposters" key. Before it is sent to the admin API the
// document is always normalized to the object form:
//
//	{"imposters": [ ... ]}
//
// Unless template rendering is disabled, the file is first rendered with the
// helpers from package template so it can include other files.
package config
