// Package cli implements the mb command line: start, stop, restart, save
// and replay.
//
// A bare "mb" or an invocation that begins with a flag runs start. Every
// command resolves its options once, from flags, MB_* environment
// variables, the rc file and defaults, before doing anything else.
package cli
