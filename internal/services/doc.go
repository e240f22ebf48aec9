// Package services implements the HTTP clients for the Spotify Web API and the YouTube Data API.
//
// # Spotify
//
// [SpotifyService] holds no credentials. Every method takes the bearer token to send, so the
// caller (player.Player, via auth.Manager) decides which token is current. Requests are paced
// with a [rate.Limiter] shared by all calls.
//
// # YouTube
//
// [YouTubeService] lists the newest uploads of one channel with an API key.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : non-2xx response (wrapped with method, endpoint and status)
//   - [shared.ErrNoContent] : 204 where a body was expected
//   - [shared.ErrMissingCredentials] : YouTube key or channel not configured
//
// Decode failures are returned as-is so callers can tell malformed payloads from HTTP errors.
package services
