package bookingcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrExhausted = errors.New("booking code space exhausted")

// Generator produces unique human-readable booking codes such as FLX-9K2QX7.
// Uniqueness is checked through the caller-supplied exists func; collisions
// are retried a bounded number of times, then once more in a wider code space
// so the operation stays total under high booking volume.
type Generator struct {
	prefix      string
	length      int
	maxAttempts int
}

func NewGenerator(prefix string, length, maxAttempts int) *Generator {
	if length < 1 {
		length = 6
	}
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &Generator{prefix: prefix, length: length, maxAttempts: maxAttempts}
}

// Next draws random codes until one is not already in use.
func (g *Generator) Next(exists func(code string) (bool, error)) (string, error) {
	code, err := g.draw(g.length, exists)
	if err == nil || !errors.Is(err, ErrExhausted) {
		return code, err
	}
	// fallback: two extra characters multiply the space by 1296
	return g.draw(g.length+2, exists)
}

func (g *Generator) draw(length int, exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		code, err := g.random(length)
		if err != nil {
			return "", err
		}
		used, err := exists(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, g.maxAttempts)
}

func (g *Generator) random(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(g.prefix)
	for _, b := range buf {
		sb.WriteByte(charset[int(b)%len(charset)])
	}
	return sb.String(), nil
}

// Normalize prepares a redemption input for lookup. Codes may be typed by
// hand at the gym door, so case and surrounding whitespace are forgiven.
func Normalize(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}
