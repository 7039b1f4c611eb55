package hashing

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
)

// HexLength is the length of a lowercase hex encoded SHA1 digest.
const HexLength = 40

// HashStrings returns the lowercase hex SHA1 digest over the concatenation
// of the given parts.
func HashStrings(parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		io.WriteString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashBytes returns the lowercase hex SHA1 digest of data.
func HashBytes(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the lowercase hex SHA1 digest of the file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsHexHash reports whether s looks like a lowercase hex SHA1 digest.
func IsHexHash(s string) bool {
	if len(s) != HexLength {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
