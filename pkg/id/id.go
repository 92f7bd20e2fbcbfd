// Package id generates identifiers: time-ordered UUIDs for stored
// records and ULID strings for request correlation.
package id

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
)

// New returns a UUIDv7, so primary keys sort by creation time.
func New() uuid.UUID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// ErrInvalid is returned by Parse for malformed identifiers.
var ErrInvalid = errors.New("id: invalid identifier")

// Parse accepts the canonical 36-character UUID form only.
func Parse(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, ErrInvalid
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalid, err)
	}
	return v, nil
}

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character Crockford base32 ULID: 48 bits of Unix
// milliseconds followed by 80 random bits.
func NewULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	var raw [16]byte
	ms := uint64(t.UnixMilli())
	for i := range 6 {
		raw[i] = byte(ms >> (40 - 8*i))
	}
	_, _ = rand.Read(raw[6:])

	// 128 bits, 26 symbols of 5 bits; the leading symbol carries 3 bits.
	var out [26]byte
	var acc uint64
	bits := 2 // pad so 130 bits split evenly
	idx := 0
	for _, b := range raw {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[idx] = crockford[(acc>>bits)&0x1F]
			idx++
		}
	}
	return string(out[:])
}
