package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

// Signer signs ticket claims with the process-wide issuing key. It is
// immutable after construction and safe for concurrent use.
type Signer struct {
	key   crypto.Signer
	keyID string
}

func NewSigner(material string) (*Signer, error) {
	key, err := ParsePrivateKey(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return NewSignerFromKey(key)
}

func NewSignerFromKey(key crypto.Signer) (*Signer, error) {
	switch key.(type) {
	case ed25519.PrivateKey, *rsa.PrivateKey, *ecdsa.PrivateKey:
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", domain.ErrSigning, key)
	}
	return &Signer{key: key, keyID: KeyID(key.Public())}, nil
}

func (s *Signer) PublicKey() crypto.PublicKey {
	return s.key.Public()
}

func (s *Signer) KeyID() string {
	return s.keyID
}

// Sign returns the hex signature over SHA-256 of the claim's canonical bytes.
// RSA keys produce PKCS#1 v1.5 signatures, the same bytes Node's
// crypto.createSign("SHA256") emits for the same payload.
func (s *Signer) Sign(claim domain.TicketClaim) (string, error) {
	canonical, err := codec.Serialize(claim)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSigning, err)
	}
	sig, err := s.signCanonical(canonical)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return hex.EncodeToString(sig), nil
}

func (s *Signer) SignClaim(claim domain.TicketClaim) (domain.SignedClaim, error) {
	sig, err := s.Sign(claim)
	if err != nil {
		return domain.SignedClaim{}, err
	}
	return domain.SignedClaim{Claim: claim, Signature: sig}, nil
}

func (s *Signer) signCanonical(canonical []byte) ([]byte, error) {
	digest := sha256.Sum256(canonical)
	switch k := s.key.(type) {
	case ed25519.PrivateKey:
		return ed25519.Sign(k, digest[:]), nil
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest[:])
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, k, digest[:])
	default:
		return nil, fmt.Errorf("unsupported key type %T", s.key)
	}
}
