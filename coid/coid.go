package coid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Scheme is the mandatory prefix of every COID.
const Scheme = "coid://"

// ErrInvalid is returned by Parse for strings that do not classify as a
// valid COID.
var ErrInvalid = errors.New("coid: invalid identifier")

// Kind classifies a COID.
type Kind int

const (
	// Invalid is any string failing the grammar.
	Invalid Kind = iota
	// Root identifies a namespace: coid://example.com
	Root
	// Unversioned identifies an object: coid://example.com/Name
	Unversioned
	// Versioned identifies a fixed version: coid://example.com/Name/1.0
	Versioned
	// VersionWildcard identifies a version range: coid://example.com/Name/^1.0
	VersionWildcard
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Unversioned:
		return "unversioned"
	case Versioned:
		return "versioned"
	case VersionWildcard:
		return "version-wildcard"
	default:
		return "invalid"
	}
}

var (
	authorityPattern       = regexp.MustCompile(`^([a-z0-9-]+\.)?[a-z0-9-]+\.[a-z]+$`)
	segmentPattern         = regexp.MustCompile(`^[A-Za-z\-_0-9.]+$`)
	versionWildcardPattern = regexp.MustCompile(`^((\^|~)(\d+\.)?\d|(\d+\.){1,2}\*)$`)
)

// ID is an immutable COID value. The zero value is Invalid.
//
// IDs are comparable with ==; two IDs are equal exactly when their string
// forms are equal.
type ID struct {
	raw       string
	kind      Kind
	authority string
	name      string
	version   string
}

// Normalize prepends the coid:// scheme if it is missing and classifies the
// result. It never rejects input: malformed strings yield an Invalid ID that
// still round-trips through String.
func Normalize(s string) ID {
	if !strings.HasPrefix(s, Scheme) {
		s = Scheme + s
	}
	return classify(s)
}

// Parse normalizes s and returns an error wrapping ErrInvalid when the
// result is not a valid COID.
func Parse(s string) (ID, error) {
	id := Normalize(s)
	if id.kind == Invalid {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return id, nil
}

// MustParse is like Parse but panics on error. Use in tests and static
// initialization where the input is known-valid.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("coid.MustParse(%q): %v", s, err))
	}
	return id
}

// Classify returns the kind of s without normalizing it first: a string
// lacking the coid:// scheme is Invalid.
func Classify(s string) Kind {
	return classify(s).kind
}

// NewRoot returns the Root COID for authority.
func NewRoot(authority string) ID {
	return classify(Scheme + authority)
}

// classify applies the grammar to a string that already carries the scheme.
func classify(raw string) ID {
	id := ID{raw: raw}

	rest, ok := strings.CutPrefix(raw, Scheme)
	if !ok {
		return id
	}

	authority, path := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority, path = rest[:i], rest[i:]
	}
	if authority == "" || !authorityPattern.MatchString(authority) {
		return id
	}

	if path == "" || path == "/" {
		id.kind = Root
		id.authority = authority
		return id
	}

	segments := strings.Split(path, "/")
	switch len(segments) {
	case 2:
		if !segmentPattern.MatchString(segments[1]) {
			return id
		}
		id.kind = Unversioned
	case 3:
		if !segmentPattern.MatchString(segments[1]) {
			return id
		}
		switch {
		case segmentPattern.MatchString(segments[2]):
			id.kind = Versioned
		case versionWildcardPattern.MatchString(segments[2]):
			id.kind = VersionWildcard
		default:
			return id
		}
		id.version = segments[2]
	default:
		return id
	}

	id.authority = authority
	id.name = segments[1]
	return id
}

// String returns the identifier string, including the scheme.
func (id ID) String() string { return id.raw }

// Kind returns the classification of the identifier.
func (id ID) Kind() Kind { return id.kind }

// IsValid reports whether the identifier is of any kind other than Invalid.
func (id ID) IsValid() bool { return id.kind != Invalid }

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool { return id.raw == "" }

// Authority returns the namespace host of a valid COID.
func (id ID) Authority() (string, bool) {
	if id.kind == Invalid {
		return "", false
	}
	return id.authority, true
}

// Name returns the name segment; absent for Root and Invalid identifiers.
func (id ID) Name() (string, bool) {
	switch id.kind {
	case Unversioned, Versioned, VersionWildcard:
		return id.name, true
	default:
		return "", false
	}
}

// Version returns the version segment of a Versioned identifier.
func (id ID) Version() (string, bool) {
	if id.kind != Versioned {
		return "", false
	}
	return id.version, true
}

// VersionWildcard returns the version range of a VersionWildcard identifier.
func (id ID) VersionWildcard() (string, bool) {
	if id.kind != VersionWildcard {
		return "", false
	}
	return id.version, true
}

// Namespace returns the identifier itself for Root COIDs and the Root COID
// of the same authority for the other valid kinds.
func (id ID) Namespace() (ID, bool) {
	switch id.kind {
	case Root:
		return id, true
	case Unversioned, Versioned, VersionWildcard:
		return NewRoot(id.authority), true
	default:
		return ID{}, false
	}
}

// Path returns the path portion of a valid COID ("" for Root,
// "/Name" or "/Name/Version" otherwise).
func (id ID) Path() string {
	switch id.kind {
	case Unversioned:
		return "/" + id.name
	case Versioned, VersionWildcard:
		return "/" + id.name + "/" + id.version
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero value; anything else must be a valid COID.
func (id *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = ID{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
