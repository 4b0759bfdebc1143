package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30 * time.Second

	MinDigits = 4
	MaxDigits = 10
)

var pow10 = [...]uint64{1, 10, 100, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10}

// Params configures a Generator. Zero fields fall back to the RFC 6238 defaults.
type Params struct {
	Digits int
	Period time.Duration
}

// GetDefaults returns a copy with defaults applied to zero-valued fields.
func (p Params) GetDefaults() Params {
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// Validate reports whether the parameters can drive a generator.
func (p Params) Validate() error {
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return ErrInvalidDigits
	}
	if p.Period < time.Second {
		return ErrInvalidPeriod
	}
	return nil
}

// Generator produces codes for one key. It is immutable and safe for concurrent use.
type Generator struct {
	key    []byte
	digits int
	period time.Duration
}

// New creates a Generator. The key is copied.
func New(key []byte, params Params) (*Generator, error) {
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	params = params.GetDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &Generator{key: k, digits: params.Digits, period: params.Period}, nil
}

func (g *Generator) Digits() int { return g.digits }

func (g *Generator) Period() time.Duration { return g.period }

// Counter returns the time step containing t.
func (g *Generator) Counter(t time.Time) uint64 {
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs) / uint64(g.period/time.Second)
}

// At returns the code for the window containing t.
func (g *Generator) At(t time.Time) string {
	return GenerateHOTP(g.key, g.Counter(t), g.digits)
}

// Remaining returns how long the window containing t stays current.
func (g *Generator) Remaining(t time.Time) time.Duration {
	step := int64(g.period / time.Second)
	next := (t.Unix()/step + 1) * step
	return time.Unix(next, 0).Sub(t)
}

// Verify checks code against the windows [counter-skew, counter+skew] around t.
func (g *Generator) Verify(code string, t time.Time, skew int) bool {
	if !g.wellFormed(code) {
		return false
	}
	if skew < 0 {
		skew = 0
	}

	counter := g.Counter(t)
	match := 0
	for i := -skew; i <= skew; i++ {
		c := int64(counter) + int64(i)
		if c < 0 {
			continue
		}
		candidate := GenerateHOTP(g.key, uint64(c), g.digits)
		// Keep scanning after a hit so timing does not reveal which window matched.
		match |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}
	return match == 1
}

func (g *Generator) wellFormed(code string) bool {
	if len(code) != g.digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// GenerateHOTP implements RFC 4226 and returns the code zero-padded to digits.
func GenerateHOTP(key []byte, counter uint64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 31-bit window.
	offset := sum[len(sum)-1] & 0x0f
	bin := uint64(binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff)

	return fmt.Sprintf("%0*d", digits, bin%pow10[digits])
}
