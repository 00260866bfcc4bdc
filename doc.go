// Package enroll drives the account-enrollment and identity-verification
// flows of a consumer banking front end: the four-step registration wizard,
// OTP verification with its purpose branch, password recovery, and the
// session gate that guards account-holder views.
//
// The identity/account backend is an external collaborator consumed through
// the [AuthGateway] interface; this package never creates users, stores
// passwords, or generates OTP codes itself. The one piece of state it owns
// across a navigation boundary, the transaction PIN chosen during sign-up
// that can only be applied after the visitor proves control of their
// email, lives in a [PendingStore] slot.
//
// # Architecture boundaries
//
// enroll is the public surface. It exposes [Engine], [Builder], [Config],
// [Wizard], [Verification], and value types. Flow orchestration and rate
// limiting live under internal/ and are never exported. The forms and
// pending subpackages are leaf components with no dependency on this
// package.
//
// # Concurrency contract
//
// An Engine is safe for concurrent use after [Builder.Build]. Individual
// Wizard and Verification values model one visitor's single-threaded UI
// flow and must not be shared across goroutines; they reject re-submission
// of an action that is still outstanding instead of serializing it.
package enroll
