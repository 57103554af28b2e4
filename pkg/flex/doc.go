// Package flex wraps the request and response of one HTTP transaction so
// that template output can be buffered, cached, suspended or streamed.
//
// A Controller holds a stack of wrapped request/response pairs. The pair on
// top of the stack is what the template engine sees; nested includes push
// and pop pairs in strict LIFO order. The controller is attached to the
// transaction through an attribute bag stored in the request context, which
// is how re-entrant calls find it:
//
//	r = flex.WithAttributes(r)
//	if c := flex.ControllerFrom(r); c != nil {
//	    // already inside a Flex transaction
//	}
//
// The attribute bag is owned by the goroutine serving the transaction and
// is not synchronised.
package flex
