// Package auth keeps a Spotify access token valid across an unattended kiosk session.
//
// [TokenStore] persists the token triple through a repositories.KVStore. [Manager] runs the
// lifecycle on top of it:
//
//	Unauthenticated -> Valid -> ExpiringSoon -> Refreshing -> Valid
//	                                                      \-> RefreshFailed -> Unauthenticated
//
// Refresh is lazy: it happens inside [Manager.EnsureValid], never on a timer. Concurrent callers
// share one in-flight refresh.
package auth
