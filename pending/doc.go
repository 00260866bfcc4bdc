// Package pending stores the minimal registration data that must survive
// the page transition between enrollment submission and OTP verification.
//
// Each client scope owns a single well-known slot: Put overwrites any
// outstanding record, and TakeIfPresent reads and deletes atomically so a
// second verification attempt can never re-apply a stale PIN.
package pending
