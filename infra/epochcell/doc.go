// Package epochcell provides an epoch-protected shared-pointer cell:
// many readers dereference the current value inside a visitor scope
// while a single writer swaps in replacements and retires old values
// only once no reader can still see them.
//
// The package is dependency-free and forms the reclamation foundation
// for the live-settings path of the substrate.
package epochcell
