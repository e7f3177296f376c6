// Package mocks provides shared hand-written fakes for testing.
//
// Each mock exposes function fields (XxxFn) that override a method, plain
// fields for canned results, and call tracking where tests need to count
// interactions:
//
//	push := mocks.NewMockPushClient("")
//	push.ScheduleErr = &onesignal.APIError{StatusCode: 400, Message: "invalid app_id"}
//
// When no function field is set the mock falls back to a simple in-memory
// behavior, so most tests only configure what they assert on.
package mocks
