// Package coid parses and classifies CloudObjects identifiers (COIDs).
//
// A COID has the form
//
//	coid://{authority}[/{name}[/{version-or-wildcard}]]
//
// and falls into one of the kinds Root, Unversioned, Versioned or
// VersionWildcard. Anything else is Invalid. Classification and the field
// accessors are total: they never panic and report absent fields with a
// false second return value.
//
// Identifiers are compared by exact, case-sensitive string equality. The
// authority must be lowercase; identifiers differing only in authority case
// are distinct and the uppercase variant is Invalid.
package coid
