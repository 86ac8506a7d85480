// Package auth authenticates callers by CloudObjects namespace shared
// secrets.
//
// A namespace proves its identity either with HTTP Basic credentials
// (the namespace domain as username, its 40 character shared secret as
// password) or with an HS256 JWT signed with that shared secret. Both
// paths look the secret up through an ObjectResolver, normally a
// *retriever.Retriever, and yield an Identity whose principal is the
// namespace COID.
package auth
