package uniuri

import (
	"crypto/rand"
)

const (
	// PasswordLen gives ~119 bits of entropy with Alphanumeric.
	PasswordLen = 20
	// SessionIDLen gives ~256 bits of entropy with Alphanumeric.
	SessionIDLen = 43

	byteRange = 256
)

// Alphanumeric is the default character set.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewLen returns a random alphanumeric string of the given length.
func NewLen(length int) string {
	return NewLenChars(length, Alphanumeric)
}

// NewLenChars returns a random string of the given length drawn from chars.
// chars must hold between 2 and 256 characters.
func NewLenChars(length int, chars string) string {
	if length <= 0 {
		return ""
	}

	n := len(chars)
	if n < 2 || n > byteRange {
		panic("uniuri: charset must hold between 2 and 256 characters")
	}

	// bytes at or above limit would favor the first characters of chars
	limit := byteRange - byteRange%n

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+8) //nolint:mnd

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
