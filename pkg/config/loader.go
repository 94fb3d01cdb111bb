package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/getmockd/mb/pkg/adminclient"
	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/logging"
	"github.com/getmockd/mb/pkg/template"
)

// Putter sends a config document to the admin API.
type Putter interface {
	PutConfig(ctx context.Context, document any) (*adminclient.ImpostersBody, error)
}

// Loader reads the configfile named by Options and installs it on a server.
type Loader struct {
	opts   cliconfig.Options
	client Putter
	log    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used by the loader.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a loader for opts. The client is only used by Load.
func NewLoader(opts cliconfig.Options, client Putter, options ...LoaderOption) *Loader {
	l := &Loader{
		opts:   opts,
		client: client,
		log:    logging.Nop(),
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// Read reads, renders and normalizes the config file. It fails with
// ErrConfigFileMissing if the file does not exist.
func (l *Loader) Read() (Document, error) {
	path := l.opts.ConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrConfigFileMissing, path)
		}
		return Document{}, fmt.Errorf("failed to read config file: %w", err)
	}

	content := data
	if l.opts.RenderTemplates() {
		rendered, err := template.New(l.opts.TemplateHelpers...).Render(path, data)
		if err != nil {
			return Document{}, &ParseError{Path: path, Err: err}
		}
		content = []byte(rendered)
	}

	doc, err := Normalize(content)
	if err != nil {
		return Document{}, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// Load installs the config file on the running server. It does nothing when
// no config file is set.
func (l *Loader) Load(ctx context.Context) error {
	if l.opts.ConfigFile == "" {
		return nil
	}

	doc, err := l.Read()
	if err != nil {
		return err
	}
	if l.client == nil {
		return errors.New("config loader has no admin client")
	}

	result, err := l.client.PutConfig(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", l.opts.ConfigFile, err)
	}

	l.log.Info("config loaded",
		"file", l.opts.ConfigFile,
		"imposters", doc.Len(),
		"installed", len(result.Imposters),
	)
	return nil
}
