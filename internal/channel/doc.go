// Package channel implements the three reminder delivery channels.
//
// Persistent hands the reminder to the background execution context.
// RemotePush schedules a future push message with the remote service.
// Foreground runs an in-process timer and is armed for every reminder.
//
// Each channel reports a domain.ChannelOutcome. Unavailable outcomes are
// expected and drive escalation; none of the channels retry.
package channel
