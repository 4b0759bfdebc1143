// Package lockout decides when repeated failed logins lock an account.
//
// State is a plain value stored with the user record. A Policy inspects and
// advances it; it holds no state of its own. An account is Locked while
// LockedUntil is in the future and Active otherwise, so locks expire lazily
// without a background job.
package lockout
