// Package server runs the short-lived HTTP listener that receives the Spotify authorization redirect.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with a middleware stack. [Handler] implementations
// register their own routes. [RequestLogger] and [Recoverer] are the stock middleware.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves /callback. It checks the state parameter, treats an error parameter
// as a terminal failure and otherwise hands the code to an [Exchanger] (auth.Manager), which
// stores the resulting tokens. Exactly one [OAuthResult] is delivered; later hits are rejected.
//
// `kiosk auth login` starts the listener on the configured host and port, opens the browser and
// shuts the listener down after the first result or a two-minute timeout.
package server
