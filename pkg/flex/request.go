package flex

import (
	"net/http"

	"github.com/arthur-debert/jsploader/pkg/paths"
)

const (
	// RecompileParam is the query parameter that forces re-materialisation
	RecompileParam = "_flex"
	// RecompileValue is the RecompileParam value asking for it
	RecompileValue = "recompile"
)

// Request is the Flex view of a transport request
type Request struct {
	r          *http.Request
	controller *Controller
	elementURI string
	online     bool
	recompile  bool
}

// NewRequest wraps r for controller c. The element URI is the path of the
// controller's resource.
func NewRequest(r *http.Request, c *Controller) *Request {
	req := &Request{
		r:          r,
		controller: c,
		recompile:  r != nil && r.URL != nil && r.URL.Query().Get(RecompileParam) == RecompileValue,
	}
	if c != nil {
		if c.Resource() != nil {
			req.elementURI = c.Resource().Path
		}
		if c.Cms() != nil {
			req.online = c.Cms().RequestContext().Online
		}
	}
	return req
}

// WithElementURI returns a copy of req describing a nested element
func (req *Request) WithElementURI(uri string) *Request {
	clone := *req
	clone.elementURI = uri
	return &clone
}

// HTTP returns the wrapped transport request
func (req *Request) HTTP() *http.Request { return req.r }

// Controller returns the owning controller
func (req *Request) Controller() *Controller { return req.controller }

// ElementURI returns the VFS path of the element being rendered
func (req *Request) ElementURI() string { return req.elementURI }

// IsOnline reports whether the request targets the online project
func (req *Request) IsOnline() bool { return req.online }

// Realm returns the realm matching IsOnline
func (req *Request) Realm() paths.Realm { return paths.RealmOf(req.online) }

// IsDoRecompile reports whether the client asked for re-materialisation
func (req *Request) IsDoRecompile() bool { return req.recompile }
