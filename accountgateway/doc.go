// Package accountgateway supports services that run behind a CloudObjects
// Account Gateway.
//
// The gateway forwards requests with C-* headers naming the account
// (C-AAUID), an access token and optional connection details. A Context
// built from those headers gives access to the Account Graph, which is
// loaded lazily through a DataLoader and cached by the C-Data-Updated
// timestamp, and to an HTTP client for calls back into the gateway.
package accountgateway
