package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

// ParsePrivateKey accepts PEM (PKCS#8, PKCS#1 RSA, SEC1 EC) or a raw ed25519
// seed/private key in hex or base64.
func ParsePrivateKey(material string) (crypto.Signer, error) {
	material = normalizeMaterial(material)
	if material == "" {
		return nil, errors.New("private key material is empty")
	}
	if strings.HasPrefix(material, "-----BEGIN") {
		return parsePrivatePEM(material)
	}
	raw, err := decodeHexOrBase64(material)
	if err != nil {
		return nil, err
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return append(ed25519.PrivateKey(nil), raw...), nil
	default:
		return nil, errors.New("invalid ed25519 private key length")
	}
}

// ParsePublicKey accepts PEM (PKIX, PKCS#1 RSA, certificate) or a raw ed25519
// public key in hex or base64.
func ParsePublicKey(material string) (crypto.PublicKey, error) {
	material = normalizeMaterial(material)
	if material == "" {
		return nil, errors.New("public key material is empty")
	}
	if strings.HasPrefix(material, "-----BEGIN") {
		return parsePublicPEM(material)
	}
	raw, err := decodeHexOrBase64(material)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 public key length")
	}
	return append(ed25519.PublicKey(nil), raw...), nil
}

// GenerateEd25519 returns a fresh seed and public key, both hex encoded.
func GenerateEd25519() (seedHex, publicHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(priv.Seed()), hex.EncodeToString(pub), nil
}

// KeyID fingerprints a public key for logs: the first 16 hex characters of
// SHA-256 over its PKIX encoding.
func KeyID(pub crypto.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])[:16]
}

func parsePrivatePEM(material string) (crypto.Signer, error) {
	block, _ := pem.Decode([]byte(material))
	if block == nil {
		return nil, errors.New("invalid PEM private key")
	}
	var (
		key any
		err error
	)
	switch block.Type {
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	switch k := key.(type) {
	case ed25519.PrivateKey:
		return k, nil
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
}

func parsePublicPEM(material string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(material))
	if block == nil {
		return nil, errors.New("invalid PEM public key")
	}
	var (
		key any
		err error
	)
	switch block.Type {
	case "PUBLIC KEY":
		key, err = x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		key, err = x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		var cert *x509.Certificate
		cert, err = x509.ParseCertificate(block.Bytes)
		if err == nil {
			key = cert.PublicKey
		}
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	switch k := key.(type) {
	case ed25519.PublicKey:
		return k, nil
	case *rsa.PublicKey:
		return k, nil
	case *ecdsa.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", key)
	}
}

// normalizeMaterial undoes the escaped newlines env files tend to carry.
func normalizeMaterial(material string) string {
	material = strings.TrimSpace(material)
	return strings.ReplaceAll(material, `\n`, "\n")
}

func decodeHexOrBase64(value string) ([]byte, error) {
	if raw, err := hex.DecodeString(value); err == nil {
		return raw, nil
	}
	if raw, err := base64.StdEncoding.DecodeString(value); err == nil {
		return raw, nil
	}
	return nil, errors.New("key material is neither PEM, hex nor base64")
}
