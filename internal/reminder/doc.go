// Package reminder implements the escalation policy that turns a task and
// a delay into armed delivery channels, and the tracker that follows each
// reminder from creation to delivery.
//
// A run moves through created, permission_checked and channel_armed. It
// ends delivered once a notification with its tag is presented after it
// is due, or exhausted when permission was granted but neither durable
// channel could be armed. Armed reminders cannot be cancelled.
package reminder
