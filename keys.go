package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// KeyPair holds the RSA key material used for token signing and verification.
// It is loaded once at process start and immutable afterwards; a load failure
// is a fatal configuration error, not a per-request condition.
type KeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewKeyPair parses PEM encoded private and public keys.
func NewKeyPair(privatePEM, publicPEM []byte) (*KeyPair, error) {
	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse RSA private key")
	}

	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse RSA public key")
	}

	return &KeyPair{private: private, public: public}, nil
}

// LoadKeyPair reads and parses the key pair from PEM files on disk.
func LoadKeyPair(privatePath, publicPath string) (*KeyPair, error) {
	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read RSA private key file")
	}

	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read RSA public key file")
	}

	return NewKeyPair(privatePEM, publicPEM)
}

// GenerateKeyPair creates an ephemeral key pair, useful for tests and local
// development where no provisioned keys exist.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate RSA key pair")
	}
	return &KeyPair{private: private, public: &private.PublicKey}, nil
}

func (k *KeyPair) Private() *rsa.PrivateKey {
	return k.private
}

func (k *KeyPair) Public() *rsa.PublicKey {
	return k.public
}

// PublicKeyPEM returns the verification key in PKCS#1 PEM form so external
// parties can verify tokens independently.
func (k *KeyPair) PublicKeyPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(k.public),
	})
}
