/*
Package randx generates identifiers for realtime connections and messages.

Connection ids are short Base62 strings (like a socket id); message ids are UUID v4.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// ConnectionIDLength is the length of a generated connection id.
	ConnectionIDLength = 20
)

var base62Len = big.NewInt(int64(len(Base62Chars)))

// ConnectionID returns a random Base62 id from crypto/rand.
func ConnectionID() (string, error) {
	result := make([]byte, ConnectionIDLength)

	for i := range result {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for connection id: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// MustConnectionID is ConnectionID falling back to a UUID when the system random source fails.
func MustConnectionID() string {
	id, err := ConnectionID()
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// MessageID generates a UUID v4 string identifying a realtime message.
func MessageID() string {
	return uuid.New().String()
}
