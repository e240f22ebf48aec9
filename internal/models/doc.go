// Package models defines the domain types shared by the kiosk's auth, device, playback and video packages.
//
// Types fall into two groups:
//
// 1. Persisted state, owned by exactly one component:
//   - [TokenData] : access/refresh token pair and absolute expiry (auth.TokenStore)
//   - [CachedDevice] : a previously seen playback device and when it was last seen (devices.Cache)
//   - [Video] : latest channel uploads, cached with a timestamp (player video feed)
//
// 2. Snapshots decoded from the Spotify Web API and never persisted:
//   - [LiveDevice] : a device currently reported reachable
//   - [PlaybackSnapshot] : current playback state, whose Item is a [PlaybackItem]
//   - [Playlist] and [PlaylistTrack] : library listings
//
// [PlaybackItem] is a closed union of [*Track] and [*Episode], discriminated by the API's currently_playing_type field.
package models
