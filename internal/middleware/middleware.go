// Package middleware holds the echo middleware: request ids, the request
// logger, tracing, bearer authentication, rate limiting and the global
// error handler.
package middleware
