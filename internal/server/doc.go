// Package server provides the local HTTP server used by the Spotify authorization code flow.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// [http.ServeMux] method patterns. [Middleware] wraps handlers so the first one added runs outermost;
// [RequestLogger] is the only one installed by default.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter (CSRF protection), exchanges the authorization code for
// tokens, and sends the result through a channel. It processes a single callback.
//
// # Callback Server
//
// [CallbackServer] ties the two together for the CLI: it binds the configured redirect address, waits
// for one callback with a timeout, and shuts itself down.
package server
