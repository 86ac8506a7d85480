// Package sdkloader builds third-party SDK configurations from
// credentials stored in the authenticating namespace.
//
// A Registry maps SDK names to factories. Each factory reads the
// properties it needs from the namespace node and returns a value for the
// caller's SDK constructor. The built-in factories return credential
// structs for "aws", "getstream" and "pusher".
//
// A Loader memoizes factory results per name and options.
package sdkloader
