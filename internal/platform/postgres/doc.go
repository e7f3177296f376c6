// Package postgres implements the store interfaces on PostgreSQL through
// the pgx database/sql driver. The schema lives in embedded goose
// migrations applied by Migrate.
package postgres
