package script

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHasher struct{}

func (fakeHasher) Sha1(d []byte) []byte {
	h := sha256.Sum256(d)
	return h[:20]
}

func (fakeHasher) Sha256(d []byte) []byte {
	h := sha256.Sum256(d)
	return h[:]
}

func (fakeHasher) Ripemd160(d []byte) []byte {
	h := sha256.Sum256(d)
	return h[:20]
}

func (fakeHasher) Hash160(d []byte) []byte {
	h := sha256.Sum256(d)
	return h[:20]
}

func (fakeHasher) Hash256(d []byte) []byte {
	h := sha256.Sum256(d)
	h2 := sha256.Sum256(h[:])
	return h2[:]
}

func TestVerifyP2PKHSuccess(t *testing.T) {
	pubKey := []byte{0xAA}
	sig := []byte{0x01, 0xAA}
	hash := fakeHasher{}.Hash160(pubKey)

	scriptPubKey := append([]byte{byte(OpDup), byte(OpHash160), 20}, hash...)
	scriptPubKey = append(scriptPubKey, byte(OpEqualVerify), byte(OpCheckSig))

	scriptSig := append([]byte{byte(len(sig))}, sig...)
	scriptSig = append(scriptSig, byte(len(pubKey)))
	scriptSig = append(scriptSig, pubKey...)

	ctx := &Context{Hash: fakeHasher{}, Sig: stubSigChecker{}}
	require.NoError(t, VerifyScripts(scriptSig, scriptPubKey, ctx))
}

func TestVerifyP2PKHWrongKeyFails(t *testing.T) {
	pubKey := []byte{0xAA}
	wrongSig := []byte{0x01, 0xBB}
	hash := fakeHasher{}.Hash160(pubKey)

	scriptPubKey := append([]byte{byte(OpDup), byte(OpHash160), 20}, hash...)
	scriptPubKey = append(scriptPubKey, byte(OpEqualVerify), byte(OpCheckSig))

	scriptSig := append([]byte{byte(len(wrongSig))}, wrongSig...)
	scriptSig = append(scriptSig, byte(len(pubKey)))
	scriptSig = append(scriptSig, pubKey...)

	ctx := &Context{Hash: fakeHasher{}, Sig: stubSigChecker{}}
	err := VerifyScripts(scriptSig, scriptPubKey, ctx)
	require.ErrorIs(t, err, ErrScriptResultFalse)
}

func TestVerifyP2SHIndirectionGatedByFlag(t *testing.T) {
	redeem := []byte{byte(OpReturn)} // always fails if actually run
	hash := fakeHasher{}.Hash160(redeem)

	scriptPubKey := append([]byte{byte(OpHash160), 20}, hash...)
	scriptPubKey = append(scriptPubKey, byte(OpEqual))

	scriptSig := append([]byte{byte(len(redeem))}, redeem...)

	ctx := &Context{Hash: fakeHasher{}}
	require.NoError(t, VerifyScripts(scriptSig, scriptPubKey, ctx),
		"without the P2SH flag, only the hash match is checked")

	ctx.Flags = ScriptVerifyP2SH
	err := VerifyScripts(scriptSig, scriptPubKey, ctx)
	require.Error(t, err, "with the P2SH flag, the redeem script itself must succeed")
}

func TestVerifyP2SHRedeemSuccess(t *testing.T) {
	redeem := []byte{byte(Op1)}
	hash := fakeHasher{}.Hash160(redeem)

	scriptPubKey := append([]byte{byte(OpHash160), 20}, hash...)
	scriptPubKey = append(scriptPubKey, byte(OpEqual))
	scriptSig := append([]byte{byte(len(redeem))}, redeem...)

	ctx := &Context{Hash: fakeHasher{}, Flags: ScriptVerifyP2SH}
	require.NoError(t, VerifyScripts(scriptSig, scriptPubKey, ctx))
}

func TestVerifySigPushOnlyRejectsNonPush(t *testing.T) {
	scriptSig := []byte{byte(OpDup)}
	scriptPubKey := []byte{byte(Op1)}
	ctx := &Context{Flags: ScriptVerifySigPushOnly}
	err := VerifyScripts(scriptSig, scriptPubKey, ctx)
	require.ErrorIs(t, err, ErrNotPushOnly)
}
