// Package aauid parses Account Gateway identifiers (AAUIDs).
//
// An AAUID names an account, one of its connections, or an account
// connected through such a connection:
//
//	aauid:{16-char-id}
//	aauid:{16-char-id}:connection:{XX}
//	aauid:{16-char-id}:account:{XX}
//
// The account id is sixteen lowercase alphanumerics and the qualifier two
// uppercase letters; both are compared case-sensitively.
package aauid
