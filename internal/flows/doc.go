// Package flows holds the engine's flow orchestration as pure functions
// over injected dependencies. Each Run function executes one user-visible
// operation as an explicit ordered pipeline of fallible steps: a step only
// runs when every previous step succeeded, and the first failure
// short-circuits with its error attached. Nothing here rolls back: a
// partially completed pipeline (account created, OTP never sent) is a
// documented state the caller surfaces, not one it hides.
//
// The root package adapts its engine wiring into the deps structs; tests
// substitute closures to observe exact call sequencing.
package flows
