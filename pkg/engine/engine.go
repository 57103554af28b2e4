// Package engine defines how the loader hands requests to the template
// engine, and ships a pass-through engine that serves materialised
// templates verbatim.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/paths"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// Dispatcher is the request-dispatcher abstraction of the template engine
type Dispatcher interface {
	// Include renders the VFS element target into w. r must belong to a
	// Flex transaction.
	Include(ctx context.Context, target string, r *http.Request, w http.ResponseWriter) error

	// Forward hands the request over to the materialised template at
	// webURI. The engine owns the response afterwards.
	Forward(ctx context.Context, webURI string, r *http.Request, w http.ResponseWriter) error

	// IncludeExternal renders the materialised template at webURI into w
	IncludeExternal(ctx context.Context, webURI string, r *http.Request, w http.ResponseWriter) error
}

// Host is the loader side of an engine: it materialises VFS elements and
// dispatches them back through IncludeExternal.
type Host interface {
	Service(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, r *http.Request, w http.ResponseWriter) error
	Repository() *paths.Repository
}

// CacheKey returns the Flex cache key of a rendering of path in realm at
// the given resource version.
func CacheKey(realm paths.Realm, path string, modified time.Time) string {
	return fmt.Sprintf("%s:%s@%d", realm, path, modified.UnixNano())
}
