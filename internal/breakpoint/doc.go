// Package breakpoint classifies viewport widths into device classes and
// offers an explicit observer for class changes.
//
// Thresholds: mobile <768, tablet 768–1023, desktop ≥1024. The WebSocket
// hub owns one Detector per connected client and uses the class to size
// broadcast payloads.
package breakpoint
