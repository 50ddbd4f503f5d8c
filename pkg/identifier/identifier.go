// Package identifier generates collision-resistant session identifiers for
// logging and correlation, grounded on the teacher's identifier scheme
// (random bytes, Base62-encoded, fixed-width with a short prefix) but
// trimmed to this domain's single kind of identifier: a sync session.
package identifier

import (
	"regexp"
	"strings"

	"github.com/tidesync/tidesync/pkg/encoding"
	"github.com/tidesync/tidesync/pkg/random"
)

const (
	// prefix identifies every value this package generates as a sync
	// session identifier.
	prefix = "sync"

	// collisionResistantLength is the number of random bytes read for each
	// identifier.
	collisionResistantLength = 32

	// targetBase62Length is the longest a Base62 encoding of
	// collisionResistantLength random bytes can be: ceil(n*8*ln(2)/ln(62)).
	targetBase62Length = 43
)

// matcher recognizes identifiers produced by New.
var matcher = regexp.MustCompile("^sync_[0-9a-zA-Z]{43}$")

// New generates a new session identifier of the form "sync_" followed by a
// fixed-width, zero-padded Base62 encoding of 32 random bytes.
func New() (string, error) {
	value, err := random.New(collisionResistantLength)
	if err != nil {
		return "", err
	}

	encoded := encoding.EncodeBase62(value)
	if len(encoded) > targetBase62Length {
		panic("encoded random data length longer than expected")
	}

	builder := &strings.Builder{}
	builder.WriteString(prefix)
	builder.WriteRune('_')
	for i := targetBase62Length - len(encoded); i > 0; i-- {
		builder.WriteByte(encoding.Base62Alphabet[0])
	}
	builder.WriteString(encoded)

	return builder.String(), nil
}

// IsValid reports whether value has the shape New produces.
func IsValid(value string) bool {
	return matcher.MatchString(value)
}
