// Package service holds the business logic between the handlers and the
// repositories.
package service
