package vault

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// obfuscationKey is compiled into the binary. Anyone with the source or the session store
// can reverse the transform: this hides the credential from casual inspection only.
const obfuscationKey = "storybook-creator-2024"

var ErrMalformedValue = errors.New("stored credential is malformed")

// Obfuscate applies the reversible transform base64(xor(base64(s), obfuscationKey)).
// It is not encryption.
func Obfuscate(plain string) string {
	encoded := []byte(base64.StdEncoding.EncodeToString([]byte(plain)))
	return base64.StdEncoding.EncodeToString(xorKey(encoded))
}

// Reveal inverts Obfuscate.
func Reveal(obfuscated string) (string, error) {
	outer, err := base64.StdEncoding.DecodeString(obfuscated)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	inner, err := base64.StdEncoding.DecodeString(string(xorKey(outer)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	return string(inner), nil
}

func xorKey(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ obfuscationKey[i%len(obfuscationKey)]
	}
	return out
}
