// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the todo stores and to the
// reminder subsystem: scheduling, permission answers, push subscriptions,
// notification clicks and window registration.
package api
