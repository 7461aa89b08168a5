package bitcoin

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// VerifySignature checks a raw DER signature body (no trailing
// sighash-type byte — TxSignatureChecker strips that before
// calling in) against pubKey over hash, using secp256k1 ECDSA. The DER
// structure itself is assumed already validated by the script
// package's encoding checks; this only has to parse it into curve
// scalars and run the curve math.
func VerifySignature(der, pubKey, hash []byte) (bool, error) {
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false, nil
	}

	key, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false, nil
	}

	return sig.Verify(hash, key), nil
}

// ParsePublicKey validates and parses a serialized compressed or
// uncompressed secp256k1 public key.
func ParsePublicKey(pubKey []byte) (*secp256k1.PublicKey, error) {
	key, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("bitcoin: invalid public key: %w", err)
	}
	return key, nil
}
