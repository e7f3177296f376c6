// Package domain contains the core entities of the reminder service: tasks,
// reminder requests, channel outcomes, permission state and notification
// render parameters, together with the error taxonomy shared by every
// delivery channel. It is independent of any infrastructure.
package domain
