// Package refcode issues short human-readable booking references that
// customers and owners quote in emails and support conversations.
package refcode

import (
	"strings"
	"time"

	"github.com/speps/go-hashids/v2"
)

const prefix = "VB"

// Letters that read unambiguously on a phone screen; no 0/O, 1/I/L.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.Alphabet = alphabet
	data.MinLength = 6

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Generator{h: h}, nil
}

// Generate returns a reference like "VB-8K2MXQ" derived from the customer
// and the current time. References are identifiers, not secrets.
func (g *Generator) Generate(customerID int64) (string, error) {
	return g.encode(customerID, time.Now().UnixMilli())
}

func (g *Generator) encode(parts ...int64) (string, error) {
	code, err := g.h.EncodeInt64(parts)
	if err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToUpper(code), nil
}
