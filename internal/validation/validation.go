// Package validation binds request payloads and turns validator failures
// into field errors.
package validation
