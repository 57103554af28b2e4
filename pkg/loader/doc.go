// Package loader implements the JSP resource loader: it materialises VFS
// templates into the RFS repository and delivers them through the template
// engine, buffering output with the Flex wrappers.
//
// A JspLoader is configured with AddConfigurationParameter, initialised
// once with a Runtime and then serves Load, Dump, Export and Service calls
// concurrently.
package loader
