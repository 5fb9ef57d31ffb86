// Package signature provides helper functions for generating RSA keys,
// signing and verifying messages and encrypting messages to a public key.
package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// KeySize is the size in bits of the keys generated by GenerateKey.
const KeySize = 2048

// ErrInvalidSignature is returned when a signature does not match the
// message for the given public key.
var ErrInvalidSignature = errors.New("invalid signature")

// pssOptions signs with the largest salt the key allows and verifies
// whatever salt length was used.
var pssOptions = rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256}

// =============================================================================

// GenerateKey constructs a new RSA private key with a public exponent
// of 65537.
func GenerateKey() (*rsa.PrivateKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return privateKey, nil
}

// PrivateKeyPEM encodes the private key in the traditional PKCS #1 PEM
// format.
func PrivateKeyPEM(privateKey *rsa.PrivateKey) []byte {
	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	return pem.EncodeToMemory(&block)
}

// PublicKeyOpenSSH encodes the public key in the OpenSSH authorized keys
// format.
func PublicKeyOpenSSH(publicKey *rsa.PublicKey) ([]byte, error) {
	pub, err := ssh.NewPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("converting public key: %w", err)
	}

	return ssh.MarshalAuthorizedKey(pub), nil
}

// =============================================================================

// Sign uses the specified private key to sign the SHA-256 of the message
// with PSS padding.
func Sign(message []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	digest := sha256.Sum256(message)

	sig, err := rsa.SignPSS(rand.Reader, privateKey, crypto.SHA256, digest[:], &pssOptions)
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}

	return sig, nil
}

// Verify checks the signature was produced for the message by the private
// key matching the specified public key.
func Verify(message []byte, sig []byte, publicKey *rsa.PublicKey) error {
	digest := sha256.Sum256(message)

	if err := rsa.VerifyPSS(publicKey, crypto.SHA256, digest[:], sig, &pssOptions); err != nil {
		return ErrInvalidSignature
	}

	return nil
}

// IsValid reports whether the signature is valid for the message and
// public key.
func IsValid(message []byte, sig []byte, publicKey *rsa.PublicKey) bool {
	return Verify(message, sig, publicKey) == nil
}

// =============================================================================

// Encrypt encrypts the message to the public key using OAEP with SHA-256.
func Encrypt(message []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, message, nil)
	if err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}

	return ciphertext, nil
}

// Decrypt decrypts an OAEP ciphertext produced by Encrypt.
func Decrypt(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	message, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, privateKey, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	return message, nil
}
