// Package onesignal is the remote push client used by the remote push
// reminder channel.
//
// The client is created once with Initialize and passed explicitly to the
// components that need it. It holds the subscription id registered by the
// user's device and schedules future push messages through the OneSignal
// REST API. It never retries; callers decide what to do with a failure.
//
// Failures are classified with the domain error taxonomy:
// a structured API rejection is an *APIError wrapping
// domain.ErrDeliveryRejected, and anything that prevents a response from
// being read wraps domain.ErrTransportFailure.
package onesignal
