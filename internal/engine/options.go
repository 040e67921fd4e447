package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/manifest"
)

type options struct {
	log          logrus.FieldLogger
	journal      history.Journal
	manifestName string
	autoReload   bool
	initialize   bool
}

func defaultOptions() options {
	return options{
		manifestName: manifest.DefaultFileName,
		autoReload:   true,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the observability hook. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithJournal records every executed command in j.
func WithJournal(j history.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithManifestName overrides the manifest file name.
func WithManifestName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.manifestName = name
		}
	}
}

// WithAutoReload controls whether manifests are reloaded after every
// successful command. On by default.
func WithAutoReload(on bool) Option {
	return func(o *options) { o.autoReload = on }
}

// WithInitialize writes empty manifests into directories lacking one when
// the engine opens.
func WithInitialize(on bool) Option {
	return func(o *options) { o.initialize = on }
}
