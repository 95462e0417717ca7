// Package codec converts serials to compact base-62 codes and back.
// It also provides the zero-fill helpers used for fixed-width key and code formatting.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const radix = uint64(len(alphabet))

var (
	// ErrInvalidCode is returned when a code is empty after zero stripping
	// or contains characters outside the alphabet.
	ErrInvalidCode = errors.New("invalid code")
	// ErrEncodingOverflow is returned when a value cannot be represented as a serial.
	ErrEncodingOverflow = errors.New("encoding overflow")
)

var digitValue = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = int8(i)
	}
	return t
}()

// Encode returns the base-62 representation of serial.
func Encode(serial uint64) string {
	if serial == 0 {
		return alphabet[:1]
	}

	// 11 base-62 digits cover the whole uint64 range.
	var buf [11]byte
	i := len(buf)

	for serial > 0 {
		i--
		buf[i] = alphabet[serial%radix]
		serial /= radix
	}

	return string(buf[i:])
}

// Decode parses a code produced by Encode, ignoring any leading zero padding.
func Decode(code string) (uint64, error) {
	const op = "codec.Decode"

	digits := StripLeadingZeros(code)
	if digits == "" {
		return 0, fmt.Errorf("%s: %q: %w", op, code, ErrInvalidCode)
	}

	var n uint64

	for i := 0; i < len(digits); i++ {
		d := digitValue[digits[i]]
		if d < 0 {
			return 0, fmt.Errorf("%s: unexpected character %q: %w", op, digits[i], ErrInvalidCode)
		}

		if n > (math.MaxUint64-uint64(d))/radix {
			return 0, fmt.Errorf("%s: %q: %w", op, code, ErrEncodingOverflow)
		}

		n = n*radix + uint64(d)
	}

	return n, nil
}

// ZeroFill left-pads s with '0' up to width characters. Longer strings are returned unchanged.
func ZeroFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// StripLeadingZeros removes every leading '0' from code.
func StripLeadingZeros(code string) string {
	return strings.TrimLeft(code, "0")
}
