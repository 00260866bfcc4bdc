// Package forms holds the enrollment draft record and the declarative
// per-step validator that gates the wizard.
//
// Validation is a pure function of the draft: no I/O, no stored state.
// Each wizard step declares the fields it owns, and ValidateStep only
// reports violations for those fields, so an incomplete later step can
// never block an earlier one.
package forms
