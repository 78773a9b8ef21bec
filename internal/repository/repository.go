// Package repository persists the application's entities.
//
// Hand-written pgx repositories serve the auth flows; Resource is the
// generic gorm repository behind the CRUD endpoints and list filtering.
package repository

import "fmt"

// notFound names the table in the error so the HTTP layer can say what was
// missing, e.g. "table:users:no rows in result set".
func notFound(table string, err error) error {
	return fmt.Errorf("table:%s:%w", table, err)
}
