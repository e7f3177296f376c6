// Package notify is the notification presentation surface shared by the
// persistent and foreground reminder channels, plus the registry of open
// application windows used when a notification is clicked.
//
// Notifications carrying the same tag collapse into a single visible entry,
// so a reminder delivered by two channels is only seen once.
package notify
