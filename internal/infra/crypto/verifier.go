package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/codec"
)

// Verifier checks claim signatures against the issuer's public key. It never
// touches the network.
type Verifier struct {
	pub   crypto.PublicKey
	keyID string
}

func NewVerifier(material string) (*Verifier, error) {
	if material == "" {
		return nil, domain.ErrVerifierConfig
	}
	pub, err := ParsePublicKey(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerifierConfig, err)
	}
	return NewVerifierFromKey(pub)
}

func NewVerifierFromKey(pub crypto.PublicKey) (*Verifier, error) {
	switch k := pub.(type) {
	case ed25519.PublicKey:
		if len(k) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: invalid ed25519 public key length", domain.ErrVerifierConfig)
		}
	case *rsa.PublicKey, *ecdsa.PublicKey:
	case nil:
		return nil, domain.ErrVerifierConfig
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", domain.ErrVerifierConfig, pub)
	}
	return &Verifier{pub: pub, keyID: KeyID(pub)}, nil
}

func (v *Verifier) KeyID() string {
	return v.keyID
}

func (v *Verifier) Verify(claim domain.TicketClaim, signature string) bool {
	return v.Check(claim, signature) == nil
}

// Check is Verify with a reason attached, for server-side logs.
func (v *Verifier) Check(claim domain.TicketClaim, signature string) error {
	canonical, err := codec.Serialize(claim)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBadSignature, err)
	}
	sig, err := codec.DecodeSignature(signature)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(canonical)
	var ok bool
	switch k := v.pub.(type) {
	case ed25519.PublicKey:
		ok = len(sig) == ed25519.SignatureSize && ed25519.Verify(k, digest[:], sig)
	case *rsa.PublicKey:
		ok = rsa.VerifyPKCS1v15(k, crypto.SHA256, digest[:], sig) == nil
	case *ecdsa.PublicKey:
		ok = ecdsa.VerifyASN1(k, digest[:], sig)
	}
	if !ok {
		return fmt.Errorf("%w: signature does not match key %s", domain.ErrBadSignature, v.keyID)
	}
	return nil
}
