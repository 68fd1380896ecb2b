// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Checkout flow with simulated payment, sqlite-backed local store, SVG export
// 0.2.0 - Price heat-map, mouse pan/zoom anchored at the pointer, hover debounce
// 0.1.0 - Initial release: seat map, keyboard navigation, persistent selection
