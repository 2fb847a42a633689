// Package scene owns the collection of visual patterns and drives their
// per-frame lifecycle.
//
// A [Manager] holds patterns in registration order. Each call to
// [Manager.Tick] runs update then draw for every active pattern and returns
// the drawn surfaces for compositing. Activation changes requested between
// ticks are queued and applied at the start of the next tick, so a
// replaced pattern is destroyed before its successor's first update and
// never while it is running.
//
// Pattern state machine:
//
//	Registered -> Active <-> Inactive
//	     any live state  -> Destroyed (terminal)
//
// Destroy is called exactly once per pattern instance. A pattern whose
// update or draw fails, by error or panic, is destroyed at the end of the
// tick and skipped from then on; the other patterns keep running.
package scene
