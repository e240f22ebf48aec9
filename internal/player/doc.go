// Package player is the playback facade the CLI and dashboard talk to.
//
// Every operation first obtains a token from the [Authenticator]. Without one it returns a
// zero result and makes no API call. API failures are logged and swallowed: callers only see
// false, nil or an empty slice.
package player
