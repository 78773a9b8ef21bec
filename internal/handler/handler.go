// Package handler binds and validates HTTP requests, calls the services and
// writes their results.
package handler
