// Package testcontext provides a context for use in tests which contains a
// working o11y, so you get logs.
package testcontext

import (
	"context"

	"github.com/uploadhub/printdocs/o11y"
	"github.com/uploadhub/printdocs/o11y/texttrace"
)

// ctx is a global singleton, initialised at package time to avoid racy
// initiation inside parallel tests.
var ctx = o11y.WithProvider(context.Background(), texttrace.New())

// Background returns a context carrying a texttrace provider writing to stderr.
func Background() context.Context {
	return ctx
}
