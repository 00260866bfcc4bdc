// Package limiters implements the fixed-window Redis throttles the engine
// applies before gateway calls that cost money or send mail.
package limiters
