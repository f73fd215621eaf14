package pwdhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Our hash is 1 byte of version, followed by 20 bytes of salt, followed by 32 bytes of scrypt.

const hashVersion1 = 1
const saltSizeV1 = 20
const scryptHashSizeV1 = 32
const scryptNV1 = 16384
const scryptrV1 = 8
const scryptpV1 = 1
const hashLenV1 = 1 + saltSizeV1 + scryptHashSizeV1

func createSalt() []byte {
	s := [saltSizeV1]byte{}
	if n, _ := rand.Read(s[:]); n != saltSizeV1 {
		panic("Error creating API key salt")
	}
	return s[:]
}

func hashKeyWithSalt(salt []byte, key string) []byte {
	dk, err := scrypt.Key([]byte(key), salt, scryptNV1, scryptrV1, scryptpV1, scryptHashSizeV1)
	if err != nil {
		panic(fmt.Sprintf("Error hashing API key: %v", err))
	}
	final := [hashLenV1]byte{}
	final[0] = hashVersion1
	copy(final[1:1+saltSizeV1], salt)
	copy(final[1+saltSizeV1:], dk)
	return final[:]
}

// HashKeyBase64 hashes an API key with a random salt, for storage in the server config
func HashKeyBase64(key string) string {
	return base64.RawStdEncoding.EncodeToString(hashKeyWithSalt(createSalt(), key))
}

// VerifyKeyBase64 returns true if a plaintext API key matches a hash produced by HashKeyBase64
func VerifyKeyBase64(key string, hashb64 string) bool {
	hash, err := base64.RawStdEncoding.DecodeString(hashb64)
	if err != nil || len(hash) != hashLenV1 || hash[0] != hashVersion1 {
		return false
	}
	salt := hash[1 : 1+saltSizeV1]
	dk, err := scrypt.Key([]byte(key), salt, scryptNV1, scryptrV1, scryptpV1, scryptHashSizeV1)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(dk, hash[1+saltSizeV1:]) == 1
}

// NewKey returns a random API key of 32 URL-safe characters
func NewKey() string {
	b := [24]byte{}
	if _, err := rand.Read(b[:]); err != nil {
		panic("Error creating API key")
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}
