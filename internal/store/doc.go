// Package store defines the persistence interfaces for the todo list and
// preferences, the errors they return and the transaction helper used by
// SQL implementations.
//
// The reminder subsystem persists nothing; a reminder that has not fired is
// lost on restart unless its background timer is still running.
package store
