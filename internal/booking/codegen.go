package booking

import (
    "context"
    "crypto/rand"
    "math/big"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I/L) so
// guests can read a code over the phone without confusion.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// codeLength is the fixed length of public verification codes.
const codeLength = 8

// maxCodeRetries bounds how often the generator retries after a
// uniqueness collision before giving up with ErrExhausted.
const maxCodeRetries = 10

// CodeGenerator issues unique, human-readable lookup codes for
// reservations.  Uniqueness is probed against the reservation store;
// the database keeps a unique index on the column as the backstop for
// a race between two generators.
type CodeGenerator struct {
    store ReservationStore
}

// NewCodeGenerator returns a CodeGenerator probing uniqueness against
// the given store.
func NewCodeGenerator(store ReservationStore) *CodeGenerator {
    return &CodeGenerator{store: store}
}

// Generate draws random codes until one is unused, retrying at most
// maxCodeRetries times.  With 31^8 possible codes a retry is already
// rare and exhausting the budget practically unreachable.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
    for i := 0; i < maxCodeRetries; i++ {
        code, err := randomCode(codeLength)
        if err != nil {
            return "", err
        }
        exists, err := g.store.CodeExists(ctx, code)
        if err != nil {
            return "", err
        }
        if !exists {
            return code, nil
        }
    }
    return "", ErrExhausted
}

// randomCode builds a code of n characters drawn uniformly from
// codeAlphabet using crypto/rand.
func randomCode(n int) (string, error) {
    max := big.NewInt(int64(len(codeAlphabet)))
    buf := make([]byte, n)
    for i := range buf {
        idx, err := rand.Int(rand.Reader, max)
        if err != nil {
            return "", err
        }
        buf[i] = codeAlphabet[idx.Int64()]
    }
    return string(buf), nil
}

// randomDigits builds a numeric code of n digits for OTP issuance.
func randomDigits(n int) (string, error) {
    max := big.NewInt(10)
    buf := make([]byte, n)
    for i := range buf {
        d, err := rand.Int(rand.Reader, max)
        if err != nil {
            return "", err
        }
        buf[i] = byte('0' + d.Int64())
    }
    return string(buf), nil
}
