// Package hlog centralises logging for the verification engine on
// top of logrus, the way Consensys-go-corset's pkg/cmd commands do
// (log.SetLevel(log.DebugLevel) behind a --verbose flag, log.Error(e)
// at failure sites). Library code never calls os.Exit; only the CLI
// driver does.
package hlog

import log "github.com/sirupsen/logrus"

// For returns a component-scoped logging entry, e.g. hlog.For("kind"),
// hlog.For("accel").
func For(component string) *log.Entry {
	return log.WithField("component", component)
}

// SetVerbosity maps spec.md §6's `verbosity` configuration option onto
// logrus levels: 0 is silent, 1 is verdict-trace (Info), 2 is
// per-step trace (Debug).
func SetVerbosity(verbosity int) {
	switch {
	case verbosity <= 0:
		log.SetLevel(log.WarnLevel)
	case verbosity == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.DebugLevel)
	}
}
