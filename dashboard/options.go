package dashboard

import (
	"golang.org/x/text/language"

	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// Option is a function that configures a Dashboard
type Option func(*Dashboard)

// WithLanguage sets the language of titles and axis labels.
// Unsupported languages fall back to the closest supported one.
func WithLanguage(tag language.Tag) Option {
	return func(d *Dashboard) {
		d.lang = matchTag(tag)
	}
}

// WithLogger sets the logger
func WithLogger(l log.Logger) Option {
	return func(d *Dashboard) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver sets the observer notified after every rendered page
func WithObserver(o Observer) Option {
	return func(d *Dashboard) {
		d.obs = o
	}
}
