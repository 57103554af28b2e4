// Package directive scans template text for <%@ ... %> directives that name
// other templates and rewrites the names they reference.
//
// Three forms are recognised:
//
//	<%@ include file="header.jsp" %>     the file attribute is rewritten in place
//	<%@ page errorPage="error.jsp" %>    the errorPage attribute is rewritten in place
//	<%@ cms file="part.jsp" %>           the whole directive is replaced by the rewritten name
//
// Any other directive passes through untouched. Directives do not nest: the
// scanner never looks for a start token inside a directive body. A start
// token without a matching end token leaves the rest of the text unchanged.
//
// Attribute values are read up to the next double quote. Escaped quotes are
// not understood, so file="a\"b.jsp" names the file `a\`.
package directive
