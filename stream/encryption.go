package stream

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
)

type encryptionMethod int

const (
	encryptionNone encryptionMethod = iota
	encryptionAES128
)

// Encryption is a segment's decryption recipe, built at playlist-refresh
// time from its KEY tag. Unsupported methods (SAMPLE-AES and anything
// unrecognized) fail construction so an encrypted segment is never silently
// delivered as ciphertext.
type Encryption struct {
	method encryptionMethod
	keyURI string
	iv     [aes.BlockSize]byte
}

// NoEncryption is the recipe for cleartext segments.
var NoEncryption = &Encryption{method: encryptionNone}

// NewEncryption interprets an EXT-X-KEY tag. The key URI is resolved
// against baseURL; a missing IV attribute derives the IV from the segment
// sequence number, big-endian in the low 8 bytes.
func NewEncryption(key *m3u8.Key, baseURL string, seq uint64) (*Encryption, error) {
	switch key.Method {
	case "NONE":
		return NoEncryption, nil

	case "AES-128":
		if key.URI == "" {
			return nil, &errs.EncryptionError{Reason: "no URI found for AES-128 key"}
		}
		if key.Keyformat != "" && key.Keyformat != "identity" {
			return nil, &errs.EncryptionError{
				Reason: fmt.Sprintf("invalid keyformat: %s", key.Keyformat),
			}
		}

		keyURI, err := absoluteURL(baseURL, key.URI)
		if err != nil {
			return nil, &errs.EncryptionError{Reason: "invalid key URI", Err: err}
		}

		e := &Encryption{method: encryptionAES128, keyURI: keyURI}
		if key.IV != "" {
			raw, err := hex.DecodeString(strings.TrimPrefix(key.IV, "0x"))
			if err != nil {
				return nil, &errs.EncryptionError{Reason: "malformed IV", Err: err}
			}
			if len(raw) != aes.BlockSize {
				return nil, &errs.EncryptionError{
					Reason: fmt.Sprintf("IV is %d bytes, want %d", len(raw), aes.BlockSize),
				}
			}
			copy(e.iv[:], raw)
		} else {
			binary.BigEndian.PutUint64(e.iv[8:], seq)
		}
		return e, nil

	case "SAMPLE-AES":
		return nil, &errs.EncryptionError{Reason: "unimplemented encryption method: SAMPLE-AES", Err: errs.ErrSampleAES}

	default:
		return nil, &errs.EncryptionError{
			Reason: fmt.Sprintf("invalid encryption method: %s", key.Method),
		}
	}
}

// Decrypt turns a fetched segment body into plaintext. AES-128 fetches the
// 16 key bytes from the key URI, then applies CBC with PKCS7 unpadding.
func (e *Encryption) Decrypt(ctx context.Context, cl *client.Client, data []byte) ([]byte, error) {
	switch e.method {
	case encryptionNone:
		return data, nil

	case encryptionAES128:
		body, err := RemoteData{URL: e.keyURI}.Fetch(ctx, cl)
		if err != nil {
			return nil, &errs.EncryptionError{Reason: "key fetch failed", Err: err}
		}
		if len(body) < aes.BlockSize {
			return nil, &errs.EncryptionError{
				Reason: fmt.Sprintf("key is %d bytes, want %d", len(body), aes.BlockSize),
			}
		}

		block, err := aes.NewCipher(body[:aes.BlockSize])
		if err != nil {
			return nil, &errs.EncryptionError{Reason: "cipher init failed", Err: err}
		}
		if len(data) == 0 || len(data)%aes.BlockSize != 0 {
			return nil, &errs.EncryptionError{
				Reason: fmt.Sprintf("ciphertext length %d is not a block multiple", len(data)),
			}
		}

		plain := make([]byte, len(data))
		cipher.NewCBCDecrypter(block, e.iv[:]).CryptBlocks(plain, data)
		return pkcs7Unpad(plain)

	default:
		return nil, &errs.EncryptionError{Reason: "unreachable encryption method", Err: errs.ErrSampleAES}
	}
}

// pkcs7Unpad strips and validates PKCS7 padding.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &errs.EncryptionError{Reason: "empty plaintext"}
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, &errs.EncryptionError{Reason: "invalid PKCS7 padding"}
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, &errs.EncryptionError{Reason: "invalid PKCS7 padding"}
		}
	}
	return data[:len(data)-n], nil
}
