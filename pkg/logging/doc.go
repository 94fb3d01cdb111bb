// Package logging sets up structured logging for mb.
//
// It wraps log/slog. The CLI logs human-readable text to stderr and, unless
// disabled, JSON lines to a log file:
//
//	log, closer, err := logging.Open(logging.FileConfig{
//	    Path:  opts.LogFile,
//	    Level: logging.ParseLevel(opts.LogLevel),
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
// Components take a *slog.Logger through an option and fall back to Nop.
package logging
