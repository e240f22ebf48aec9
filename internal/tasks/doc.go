// Package tasks runs the background work behind the dashboard.
//
// [Poller] reads the current playback state immediately and then on a fixed interval, emitting
// an [Update] per read on a channel. It validates the token before every read, so an expiring
// token is refreshed in place; when validation fails it emits a final [AuthLost] update and
// stops. There is no backoff.
//
// The channel is closed when the poller stops, either on context cancellation or after AuthLost.
package tasks
