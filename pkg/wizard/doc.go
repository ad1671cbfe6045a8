// Package wizard implements the linear step controller shared by every
// intake form: one active step, a validation gate on Advance, and back
// traversal without skipping.
package wizard
