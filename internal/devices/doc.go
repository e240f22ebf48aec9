// Package devices remembers every playback device the kiosk has seen and merges that history
// with the list the API reports right now.
//
// Spotify only lists devices that are awake. [Cache] keeps a persisted history keyed by device ID
// (purged after a retention window) and [Reconciler] overlays it on a live list, so a sleeping
// speaker still shows up as a transfer target.
package devices
