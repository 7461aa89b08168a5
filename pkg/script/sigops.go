package script

import "math/big"

// secp256k1HalfOrder is N/2 for the secp256k1 curve order, used by the
// LOW_S policy check: a malleable-but-valid signature has its S above
// this value, and a canonical signer always produces one below it.
var secp256k1HalfOrder = mustHex(
	"7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF5D576E7357A4501DDFE92F46681B20A0",
)

func mustHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("script: bad hex constant")
	}
	return n
}

// isValidDERSignature applies the strict DER structure check BIP66
// requires (a signature body, with the trailing sighash-type byte
// already stripped). Grounded on the byte-level parsing style
// daglabs-btcd's checkSignatureEncoding uses rather than a generic ASN.1
// decoder.
func isValidDERSignature(sig []byte) bool {
	if len(sig) < 8 || len(sig) > 72 {
		return false
	}
	if sig[0] != 0x30 {
		return false
	}
	if int(sig[1]) != len(sig)-2 {
		return false
	}

	if sig[2] != 0x02 {
		return false
	}
	rlen := int(sig[3])
	if rlen == 0 || 4+rlen >= len(sig) {
		return false
	}
	if sig[4]&0x80 != 0 {
		return false
	}
	if rlen > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return false
	}

	sOff := 4 + rlen
	if sig[sOff] != 0x02 {
		return false
	}
	slen := int(sig[sOff+1])
	if slen == 0 || sOff+2+slen != len(sig) {
		return false
	}
	if sig[sOff+2]&0x80 != 0 {
		return false
	}
	if slen > 1 && sig[sOff+2] == 0x00 && sig[sOff+3]&0x80 == 0 {
		return false
	}

	return true
}

// parseDERRS extracts the raw R and S big-endian integers from an
// already-validated DER signature body.
func parseDERRS(sig []byte) (r, s []byte) {
	rlen := int(sig[3])
	r = sig[4 : 4+rlen]
	sOff := 4 + rlen
	slen := int(sig[sOff+1])
	s = sig[sOff+2 : sOff+2+slen]
	return r, s
}

func isLowS(s []byte) bool {
	v := new(big.Int).SetBytes(s)
	return v.Cmp(secp256k1HalfOrder) <= 0
}

// checkSignatureEncoding applies the DERSIG/LOW_S/STRICTENC policy
// checks to a signature as pushed on the stack (DER body plus trailing
// sighash-type byte). It does not touch the curve itself.
func checkSignatureEncoding(sig []byte, flags Flags) error {
	if !flags.Has(ScriptVerifyDERSig) && !flags.Has(ScriptVerifyLowS) && !flags.Has(ScriptVerifyStrictEnc) {
		return nil
	}
	if len(sig) < 1 {
		return ErrInvalidSignatureEncoding
	}
	body := sig[:len(sig)-1]
	if !isValidDERSignature(body) {
		return ErrInvalidSignatureEncoding
	}
	if flags.Has(ScriptVerifyLowS) {
		_, s := parseDERRS(body)
		if !isLowS(s) {
			return ErrInvalidSignatureEncoding
		}
	}
	if flags.Has(ScriptVerifyStrictEnc) {
		hashType := sig[len(sig)-1] &^ 0x80
		if hashType < 1 || hashType > 3 {
			return ErrInvalidSignatureEncoding
		}
	}
	return nil
}

// checkPubKeyEncoding applies the STRICTENC pubkey-format check:
// compressed (33 bytes) or uncompressed (65 bytes) points only.
func checkPubKeyEncoding(pubKey []byte, flags Flags) error {
	if !flags.Has(ScriptVerifyStrictEnc) {
		return nil
	}
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		return nil
	}
	return ErrInvalidPubKeyEncoding
}

func (e *Engine) execCheckSig(verify bool) error {
	pubKey, err := e.main.pop()
	if err != nil {
		return err
	}
	sig, err := e.main.pop()
	if err != nil {
		return err
	}

	if len(sig) > 0 {
		if err := checkSignatureEncoding(sig, e.ctx.Flags); err != nil {
			return err
		}
	}
	if err := checkPubKeyEncoding(pubKey, e.ctx.Flags); err != nil {
		return err
	}

	ok := false
	if len(sig) > 0 {
		if e.ctx.Sig == nil {
			return ErrNoSignatureChecker
		}
		ok, err = e.ctx.Sig.CheckSig(sig, pubKey, e.subscript())
		if err != nil {
			return err
		}
	}

	if verify {
		if !ok {
			return ErrVerifyFailed
		}
		return nil
	}
	e.main.push(boolBytes(ok))
	return nil
}

// execCheckMultiSig implements OP_CHECKMULTISIG/OP_CHECKMULTISIGVERIFY,
// including the consensus off-by-one bug: an extra element below the
// signatures is always popped and discarded (only checked for
// emptiness under the NULLDUMMY flag), and matching is greedy — each
// signature is tried against public keys in order and must match
// before the interpreter moves on, it is never retried against an
// earlier key.
func (e *Engine) execCheckMultiSig(verify bool) error {
	nKeysItem, err := e.main.pop()
	if err != nil {
		return err
	}
	nKeysNum, err := decodeNum(nKeysItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	nKeys := int(nKeysNum)
	if nKeys < 0 || nKeys > 20 {
		return ErrTooManyPubkeys
	}

	pubKeys := make([][]byte, nKeys)
	for i := nKeys - 1; i >= 0; i-- {
		pubKeys[i], err = e.main.pop()
		if err != nil {
			return err
		}
	}

	nSigsItem, err := e.main.pop()
	if err != nil {
		return err
	}
	nSigsNum, err := decodeNum(nSigsItem, defaultScriptNumLen)
	if err != nil {
		return err
	}
	nSigs := int(nSigsNum)
	if nSigs < 0 || nSigs > nKeys {
		return ErrTooManySignatures
	}

	sigs := make([][]byte, nSigs)
	for i := nSigs - 1; i >= 0; i-- {
		sigs[i], err = e.main.pop()
		if err != nil {
			return err
		}
	}

	dummy, err := e.main.pop()
	if err != nil {
		return err
	}
	if e.ctx.Flags.Has(ScriptVerifyNullDummy) && len(dummy) != 0 {
		return ErrNonNullDummy
	}

	subScript := e.subscript()

	sigIdx, keyIdx := 0, 0
	for sigIdx < nSigs {
		if nSigs-sigIdx > nKeys-keyIdx {
			break
		}
		sig := sigs[sigIdx]
		pubKey := pubKeys[keyIdx]

		if len(sig) > 0 {
			if err := checkSignatureEncoding(sig, e.ctx.Flags); err != nil {
				return err
			}
		}
		if err := checkPubKeyEncoding(pubKey, e.ctx.Flags); err != nil {
			return err
		}

		matched := false
		if len(sig) > 0 {
			if e.ctx.Sig == nil {
				return ErrNoSignatureChecker
			}
			matched, err = e.ctx.Sig.CheckSig(sig, pubKey, subScript)
			if err != nil {
				return err
			}
		}
		if matched {
			sigIdx++
		}
		keyIdx++
	}

	success := sigIdx == nSigs

	if verify {
		if !success {
			return ErrVerifyFailed
		}
		return nil
	}
	e.main.push(boolBytes(success))
	return nil
}
