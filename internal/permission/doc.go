// Package permission implements the permission gatekeeper: a side-effect
// free query of the user's notification consent and a single, user-initiated
// consent prompt.
package permission
