package srv

import (
	"context"

	"github.com/sandevgo/tuskdash/pkg/log"
)

// cleanupService releases a resource at shutdown and does nothing on start.
type cleanupService struct {
	name    string
	cleanup func() error
}

func (c *cleanupService) Start(context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	log.FromCtx(ctx).Debug().Str("resource", c.name).Msg("releasing resource")
	return c.cleanup()
}

// NewCleanup wraps fn as a Service. Since shutdown runs in reverse order,
// register cleanups before the services that use the resource.
func NewCleanup(name string, fn func() error) Service {
	return &cleanupService{name: name, cleanup: fn}
}
