package sctp

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logger is the package-level structured logger used by every component of
// this module to record lifecycle, configuration, and I/O events. It wraps
// a stumpy JSON-backed logiface.Logger, matching the logging stack the
// teacher package's sibling logiface-stumpy module is built to configure.
var logger = stumpy.L.New(
	stumpy.L.WithStumpy(),
)

// setLogger replaces the package-level logger, for use by cmd/sctpecho (or
// tests) that want a differently-configured writer/field set. It is not
// safe to call concurrently with logging calls already in flight.
func setLogger(l *logiface.Logger[*stumpy.Event]) {
	if l == nil {
		return
	}
	logger = l
}
