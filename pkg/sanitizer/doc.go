// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent and never fails: malformed input comes back
// unchanged or empty and is left for the validators to reject.
package sanitizer
