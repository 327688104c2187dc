// Package a11y compresses a raw CDP accessibility tree into the compact,
// line-oriented text format the client protocol exchanges, and implements
// the "interesting node" filter that keeps that text small enough to be
// useful to a human or an agent skimming it.
//
// Both transformations are pure: given the same node list they always
// produce the same filtered tree / rendered text, with no dependency on
// any live CDP connection.
//
// Example usage:
//
//	nodes := []a11y.Node{ /* decoded from Accessibility.getFullAXTree */ }
//	filtered := a11y.Filter(nodes)
//	text := a11y.Render(filtered)
package a11y
