package shopgoodwill

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"net/url"
)

// The site obfuscates login fields client-side with a fixed, publicly known
// key and an all-zero IV. Reproduced exactly so our ciphertext matches what
// the web app would send. Deterministic by construction: same plaintext,
// same output.
var (
	loginKey = []byte("6696D2E6F042FEC4D6E3F32AD541143B")
	loginIV  = []byte("0000000000000000")
)

// EncryptLoginValue applies the site's credential obfuscation: AES-CBC with
// the fixed key/IV, PKCS7 padding, base64, then URL query escaping.
func EncryptLoginValue(plaintext string) string {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	block, err := aes.NewCipher(loginKey)
	if err != nil {
		// key is a compile-time constant of valid length
		panic(err)
	}
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, loginIV).CryptBlocks(ct, padded)

	return url.QueryEscape(base64.StdEncoding.EncodeToString(ct))
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}
