// Package events provides types and interfaces for an event-driven architecture.
//
// The notification surface and the escalation policy publish events without
// knowing which components consume them; the reminder tracker subscribes to
// learn when a reminder has been delivered.
//
// The primary components are:
// - Event: a typed, JSON-payload event
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
