package flex

import (
	"context"
	"net/http"
)

// ControllerAttribute is the attribute slot holding the active Controller
const ControllerAttribute = "org.opencms.flex.CmsFlexController"

type attributesKey struct{}

// Attributes is the mutable attribute bag of one transaction. Requests
// derived from the transport request share it.
type Attributes struct {
	values map[string]interface{}
}

// WithAttributes returns r carrying an attribute bag. A request that already
// has one is returned unchanged.
func WithAttributes(r *http.Request) *http.Request {
	if AttributesOf(r) != nil {
		return r
	}
	attrs := &Attributes{values: make(map[string]interface{})}
	return r.WithContext(context.WithValue(r.Context(), attributesKey{}, attrs))
}

// AttributesOf returns the attribute bag of r, or nil
func AttributesOf(r *http.Request) *Attributes {
	if r == nil {
		return nil
	}
	attrs, _ := r.Context().Value(attributesKey{}).(*Attributes)
	return attrs
}

// Get returns the value stored under name, or nil
func (a *Attributes) Get(name string) interface{} {
	return a.values[name]
}

// Set stores value under name
func (a *Attributes) Set(name string, value interface{}) {
	a.values[name] = value
}

// Remove deletes the value stored under name
func (a *Attributes) Remove(name string) {
	delete(a.values, name)
}

// ControllerFrom returns the controller attached to r, or nil
func ControllerFrom(r *http.Request) *Controller {
	attrs := AttributesOf(r)
	if attrs == nil {
		return nil
	}
	c, _ := attrs.Get(ControllerAttribute).(*Controller)
	return c
}

// SetController attaches c to the transaction of r. It reports false when r
// carries no attribute bag.
func SetController(r *http.Request, c *Controller) bool {
	attrs := AttributesOf(r)
	if attrs == nil {
		return false
	}
	attrs.Set(ControllerAttribute, c)
	return true
}

// RemoveController detaches the controller from the transaction of r
func RemoveController(r *http.Request) {
	attrs := AttributesOf(r)
	if attrs == nil {
		return
	}
	if c, ok := attrs.Get(ControllerAttribute).(*Controller); ok {
		c.detach()
	}
	attrs.Remove(ControllerAttribute)
}
