// internal/browser/session/context_utils.go
package session

import (
	"context"
)

// CombineContext creates a new context derived from ctx1 (the session context)
// that is canceled when *either* ctx1 or ctx2 (the operational context) is
// canceled. It inherits values from ctx1 only. chromedp needs this because
// ctx1 carries the CDP target, while ctx2 carries the caller's deadline.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(ctx1)
	stop := context.AfterFunc(ctx2, cancel)
	return combinedCtx, func() {
		stop()
		cancel()
	}
}
