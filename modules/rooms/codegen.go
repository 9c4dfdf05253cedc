package rooms

import (
	"strconv"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"
)

// Base-36 alphabet used for the random suffix of room codes.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SuffixLength is the length of the random part of a room code.
const SuffixLength = 5

// DefaultCodeAttempts bounds collision retries when generating a code.
const DefaultCodeAttempts = 5

// CodeGenerator produces room codes of the form
// "<base36 epoch millis>-<5 random base36 chars>". Codes are unique enough
// for short-lived rooms, not cryptographically unique; callers must still
// collision-check against the registry before inserting.
type CodeGenerator struct {
	now    func() time.Time
	suffix func() string
}

// NewCodeGenerator creates a CodeGenerator backed by a nanoid source.
func NewCodeGenerator() (*CodeGenerator, error) {
	suffix, err := gonanoid.CustomASCII(codeAlphabet, SuffixLength)
	if err != nil {
		return nil, err
	}
	return &CodeGenerator{
		now:    time.Now,
		suffix: suffix,
	}, nil
}

// Generate returns a new room code.
func (g *CodeGenerator) Generate() string {
	ts := strconv.FormatInt(g.now().UnixMilli(), 36)
	return ts + "-" + g.suffix()
}
