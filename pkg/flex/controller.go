package flex

import (
	"net/http"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// State is the lifecycle position of a Controller
type State int

const (
	// Fresh controllers have not dispatched yet
	Fresh State = iota
	// Loaded controllers have dispatched to the engine
	Loaded
	// Committed controllers have delivered their output
	Committed
	// Suspended controllers hold output that must not be transmitted
	Suspended
	// Detached controllers are no longer attached to the transaction
	Detached
)

// String returns a short name for the state
func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Loaded:
		return "loaded"
	case Committed:
		return "committed"
	case Suspended:
		return "suspended"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Controller holds the wrapped request/response stack of one transaction
type Controller struct {
	cms      *cms.Object
	resource *vfs.Resource
	cache    Cache

	req *http.Request
	res *TrackedWriter

	requests  []*Request
	responses []*Response

	state State
}

// NewController creates a controller for the transport pair req/res. The
// transport response is wrapped for commit tracking.
func NewController(cmsObject *cms.Object, resource *vfs.Resource, cache Cache, req *http.Request, res http.ResponseWriter) *Controller {
	return &Controller{
		cms:      cmsObject,
		resource: resource,
		cache:    cache,
		req:      req,
		res:      Track(res),
		state:    Fresh,
	}
}

// Cms returns the CMS handle of the transaction
func (c *Controller) Cms() *cms.Object { return c.cms }

// Resource returns the VFS resource the transaction was started for
func (c *Controller) Resource() *vfs.Resource { return c.resource }

// Cache returns the Flex cache handle
func (c *Controller) Cache() Cache { return c.cache }

// TransportRequest returns the unwrapped transport request
func (c *Controller) TransportRequest() *http.Request { return c.req }

// TransportResponse returns the commit-tracked transport response
func (c *Controller) TransportResponse() *TrackedWriter { return c.res }

// State returns the lifecycle state
func (c *Controller) State() State { return c.state }

// CurrentRequest returns the request on top of the stack, or nil
func (c *Controller) CurrentRequest() *Request {
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

// CurrentResponse returns the response on top of the stack, or nil
func (c *Controller) CurrentResponse() *Response {
	if len(c.responses) == 0 {
		return nil
	}
	return c.responses[len(c.responses)-1]
}

// PushRequest makes req the current request
func (c *Controller) PushRequest(req *Request) {
	c.requests = append(c.requests, req)
}

// PushResponse makes res the current response
func (c *Controller) PushResponse(res *Response) {
	c.responses = append(c.responses, res)
}

// PopRequest removes and returns the current request
func (c *Controller) PopRequest() *Request {
	req := c.CurrentRequest()
	if req != nil {
		c.requests = c.requests[:len(c.requests)-1]
	}
	return req
}

// PopResponse removes and returns the current response
func (c *Controller) PopResponse() *Response {
	res := c.CurrentResponse()
	if res != nil {
		c.responses = c.responses[:len(c.responses)-1]
	}
	return res
}

// Depth returns the number of pushed request/response pairs
func (c *Controller) Depth() int {
	return len(c.requests)
}

// MarkLoaded records that the engine has been dispatched to
func (c *Controller) MarkLoaded() {
	if c.state == Fresh {
		c.state = Loaded
	}
}

// MarkDelivered records how the output of the transaction ended
func (c *Controller) MarkDelivered(suspended bool) {
	if c.state == Detached {
		return
	}
	if suspended {
		c.state = Suspended
		return
	}
	c.state = Committed
}

func (c *Controller) detach() {
	c.state = Detached
}
