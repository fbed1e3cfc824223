// Package events defines the events emitted on the transition bus.
//
// Available event types:
//   - Transition: the prediction form moved from one state to another
package events
