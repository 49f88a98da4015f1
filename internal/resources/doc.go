// Package resources turns configured resource groups into ordered
// descriptors and decides which of them are hidden.
//
// Enumeration walks a group's directory with doublestar include globs,
// drops paths matching an exclude glob and returns the survivors sorted by
// slash-separated relative path so repeated runs process files in the same
// order.
package resources
