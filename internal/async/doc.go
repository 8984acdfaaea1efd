// Package async is the bridge between test goroutines and the single UI
// goroutine of the toolkit under test.
//
// Work is marshalled onto the UI goroutine with RunOnUI (or run inline when
// the caller already is the UI goroutine), observed through a Task handle,
// and failures raised there are parked in an Aggregator until a synchronous
// caller collects them. WaitForEvents approximates "the UI has settled" by
// posting marker runnables and sleeping between them; it is a bounded
// heuristic, not a fixed point: a chain of UI work longer than the attempt
// count may still be running when it returns.
package async
