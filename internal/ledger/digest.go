package ledger

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DigestSize is the fixed width of every stored digest.
const DigestSize = 32

// ErrInvalidDigest indicates a digest that is not hex or wider than DigestSize.
var ErrInvalidDigest = errors.New("invalid digest")

// Digest is a fixed-width content hash. The zero value is the all-zero digest.
type Digest [DigestSize]byte

// ParseDigest decodes a hex digest with an optional 0x prefix. Inputs shorter
// than DigestSize bytes are left-padded with zeros.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return d, ErrInvalidDigest
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) > DigestSize {
		return d, ErrInvalidDigest
	}
	copy(d[DigestSize-len(raw):], raw)
	return d, nil
}

// IsZero reports whether every byte is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDigest(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the digest as a 32-byte blob.
func (d Digest) Value() (driver.Value, error) {
	return d[:], nil
}

// Scan reads a 32-byte blob.
func (d *Digest) Scan(src any) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan digest: unexpected type %T", src)
	}
	if len(raw) != DigestSize {
		return fmt.Errorf("scan digest: %w: %d bytes", ErrInvalidDigest, len(raw))
	}
	copy(d[:], raw)
	return nil
}
