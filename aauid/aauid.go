package aauid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Scheme is the mandatory prefix of every AAUID.
const Scheme = "aauid:"

const (
	connectionSegment = "connection"
	accountSegment    = "account"
)

// ErrInvalid is returned by Parse for strings that do not classify as a
// valid AAUID.
var ErrInvalid = errors.New("aauid: invalid identifier")

// Kind classifies an AAUID.
type Kind int

const (
	// Invalid is any string failing the grammar.
	Invalid Kind = iota
	// Account is a bare account: aauid:abcd1234abcd1234
	Account
	// Connection is an account connection: aauid:abcd1234abcd1234:connection:AA
	Connection
	// ConnectedAccount is an account reached through a connection:
	// aauid:abcd1234abcd1234:account:AA
	ConnectedAccount
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Account:
		return "account"
	case Connection:
		return "connection"
	case ConnectedAccount:
		return "connected-account"
	default:
		return "invalid"
	}
}

var (
	accountPattern   = regexp.MustCompile(`^[a-z0-9]{16}$`)
	qualifierPattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// ID is an immutable AAUID value. The zero value is Invalid.
type ID struct {
	raw       string
	kind      Kind
	account   string
	qualifier string
}

// Normalize prepends the aauid: scheme if missing and classifies the result.
// Casing is left untouched.
func Normalize(s string) ID {
	if !strings.HasPrefix(s, Scheme) {
		s = Scheme + s
	}
	return classify(s)
}

// Parse normalizes s and returns an error wrapping ErrInvalid when the
// result is not a valid AAUID.
func Parse(s string) (ID, error) {
	id := Normalize(s)
	if id.kind == Invalid {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return id, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("aauid.MustParse(%q): %v", s, err))
	}
	return id
}

// Classify returns the kind of s without normalizing it first.
func Classify(s string) Kind {
	return classify(s).kind
}

// NewConnection returns the connection AAUID for an account and qualifier.
func NewConnection(account ID, qualifier string) ID {
	return classify(Scheme + account.account + ":" + connectionSegment + ":" + qualifier)
}

// NewConnectedAccount returns the connected-account AAUID for an account
// and qualifier.
func NewConnectedAccount(account ID, qualifier string) ID {
	return classify(Scheme + account.account + ":" + accountSegment + ":" + qualifier)
}

func classify(raw string) ID {
	id := ID{raw: raw}

	path, ok := strings.CutPrefix(raw, Scheme)
	if !ok || path == "" {
		return id
	}

	segments := strings.Split(path, ":")
	switch len(segments) {
	case 1:
		if !accountPattern.MatchString(segments[0]) {
			return id
		}
		id.kind = Account
	case 3:
		if !accountPattern.MatchString(segments[0]) || !qualifierPattern.MatchString(segments[2]) {
			return id
		}
		switch segments[1] {
		case connectionSegment:
			id.kind = Connection
		case accountSegment:
			id.kind = ConnectedAccount
		default:
			return id
		}
		id.qualifier = segments[2]
	default:
		return id
	}

	id.account = segments[0]
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

// AccountID returns the sixteen-character account id of a valid AAUID.
func (id ID) AccountID() (string, bool) {
	if id.kind == Invalid {
		return "", false
	}
	return id.account, true
}

// Qualifier returns the two-letter qualifier of a Connection or
// ConnectedAccount AAUID.
func (id ID) Qualifier() (string, bool) {
	switch id.kind {
	case Connection, ConnectedAccount:
		return id.qualifier, true
	default:
		return "", false
	}
}

// Account returns the Account AAUID underlying any valid AAUID.
func (id ID) Account() (ID, bool) {
	if id.kind == Invalid {
		return ID{}, false
	}
	if id.kind == Account {
		return id, true
	}
	return classify(Scheme + id.account), true
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
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
