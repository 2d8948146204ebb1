// Package cryptox implements the cryptographic primitives of the envelope
// protocol: AES-256-CBC with PKCS#7 padding and a random IV prefix, the OTP
// verification digest, and password preparation before transport.
//
// The envelope gives confidentiality only. There is no MAC, so a modified
// ciphertext is not reliably detected: flipping a bit in ciphertext block i
// garbles plaintext block i and flips the same bit in block i+1. Callers rely
// on PKCS#7, UTF-8 and JSON validation to reject most tampering.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophlink/internal/common"
)

// KeySize is the only accepted key length (AES-256).
const KeySize = 32

var (
	ErrInvalidKey = errors.New("invalid envelope key")
	ErrDecrypt    = errors.New("envelope decrypt failed")
)

// EncryptCBC encrypts plaintext with AES-CBC under key and returns
// base64(IV ‖ ciphertext). A new random 16-byte IV is drawn for every call.
//
// Example:
//
//	key := common.GenerateRandByteArray(cryptox.KeySize)
//	blob, err := cryptox.EncryptCBC(key, []byte(`{"sOtp":"123456"}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(blob) // e.g. "q0n3...=="
func EncryptCBC(key, plaintext []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	iv := common.GenerateRandByteArray(aes.BlockSize)
	copy(out, iv)

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptCBC reverses EncryptCBC. Every failure (bad base64, truncated input,
// a length that is not a whole number of blocks, bad padding or a plaintext
// that is not valid UTF-8) is reported as ErrDecrypt.
func DecryptCBC(key []byte, blob string) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecrypt, err)
	}

	if len(raw) < 2*aes.BlockSize {
		return nil, fmt.Errorf("%w: truncated input (%d bytes)", ErrDecrypt, len(raw))
	}

	iv, ct := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrDecrypt)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(plain) {
		return nil, fmt.Errorf("%w: plaintext is not utf-8", ErrDecrypt)
	}

	return plain, nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("%w: bad padded length", ErrDecrypt)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
		}
	}
	return b[:len(b)-n], nil
}

// OTPDigest is the verification digest the backend returns after a
// successful OTP check: lowercase hex SHA-1 over code ‖ otpID.
func OTPDigest(code, otpID string) string {
	sum := sha1.Sum([]byte(code + otpID))
	return hex.EncodeToString(sum[:])
}
