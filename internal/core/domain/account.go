package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Account is an address-like identifier supplied by the signer.
// Membership checks always use the normalized form.
type Account string

// Normalize returns the lower-cased, trimmed form used for comparisons.
func (a Account) Normalize() Account {
	return Account(strings.ToLower(strings.TrimSpace(string(a))))
}

// Equal compares two accounts case-insensitively.
func (a Account) Equal(other Account) bool {
	return a.Normalize() == other.Normalize()
}

// IsZero reports whether no account is set.
func (a Account) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// IsHexAddress reports whether the account looks like a 20-byte hex address.
func (a Account) IsHexAddress() bool {
	s := strings.TrimPrefix(string(a.Normalize()), "0x")
	if len(s) != 40 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Checksum returns the EIP-55 mixed-case form for display.
// Accounts that are not hex addresses are returned unchanged.
func (a Account) Checksum() string {
	if !a.IsHexAddress() {
		return string(a)
	}
	lower := strings.TrimPrefix(string(a.Normalize()), "0x")

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	digest := hasher.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if c >= 'a' && c <= 'f' && nibble >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

func (a Account) String() string {
	return string(a)
}
