package bitcoin

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/bitcoinecho/script/pkg/script"
)

// buildP2PKHScriptPubKey builds OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY
// OP_CHECKSIG for the given 20-byte pubkey hash.
func buildP2PKHScriptPubKey(pubKeyHash []byte) []byte {
	out := []byte{0x76, 0xa9, byte(len(pubKeyHash))}
	out = append(out, pubKeyHash...)
	out = append(out, 0x88, 0xac)
	return out
}

// signP2PKHInput signs inputIndex of tx against prevScript with priv and
// returns the scriptSig: <sig+hashtype push> <pubkey push>.
func signP2PKHInput(t *testing.T, tx *Transaction, inputIndex int, prevScript []byte, priv *secp256k1.PrivateKey, hashType byte) []byte {
	t.Helper()

	hash, err := tx.HashForSigning(inputIndex, prevScript, hashType)
	if err != nil {
		t.Fatalf("HashForSigning: %v", err)
	}
	sig := ecdsa.Sign(priv, hash)
	der := append(sig.Serialize(), hashType)

	pubKey := priv.PubKey().SerializeCompressed()

	scriptSig := []byte{byte(len(der))}
	scriptSig = append(scriptSig, der...)
	scriptSig = append(scriptSig, byte(len(pubKey)))
	scriptSig = append(scriptSig, pubKey...)
	return scriptSig
}

// TestTxSignatureCheckerVerifiesRealSignature drives HashForSigning,
// ecdsa signing, and TxSignatureChecker/VerifySignature together against
// a P2PKH input, the one real signature-verification path this module
// wires from the domain-stack crypto library end to end.
func TestTxSignatureCheckerVerifiesRealSignature(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generating private key: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	pubKeyHash := ComputeHash160(pubKey)
	prevScript := buildP2PKHScriptPubKey(pubKeyHash.Bytes())

	prevHash, _ := NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000001")
	tx := NewTransaction(1, []TxInput{{
		PreviousOutput: OutPoint{Hash: prevHash, Index: 0},
		Sequence:       0xffffffff,
	}}, []TxOutput{{
		Value:        4900000000,
		ScriptPubKey: prevScript,
	}}, 0)

	scriptSig := signP2PKHInput(t, tx, 0, prevScript, priv, SigHashAll)
	tx.Inputs[0].ScriptSig = scriptSig

	utxoSet := NewUTXOSet()
	utxoSet.Add(NewUTXO(prevHash, 0, 5000000000, prevScript))

	inputCtx, err := utxoSet.InputContext(tx, 0)
	if err != nil {
		t.Fatalf("InputContext: %v", err)
	}

	flags := script.ScriptVerifyP2SH | script.ScriptVerifyStrictEnc |
		script.ScriptVerifyDERSig | script.ScriptVerifyLowS |
		script.ScriptVerifyNullDummy | script.ScriptVerifyMinimalData

	if err := script.VerifyTransactionInput(inputCtx, scriptSig, ScriptHasher{}, flags); err != nil {
		t.Fatalf("VerifyTransactionInput: expected valid spend, got %v", err)
	}
}

// TestTxSignatureCheckerRejectsWrongKey spends an output locked to one
// key's hash with a signature and pubkey push from another, unrelated
// key; the spend fails at OP_EQUALVERIFY before any signature check.
func TestTxSignatureCheckerRejectsWrongKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generating private key: %v", err)
	}
	other, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generating private key: %v", err)
	}

	pubKeyHash := ComputeHash160(priv.PubKey().SerializeCompressed())
	prevScript := buildP2PKHScriptPubKey(pubKeyHash.Bytes())

	prevHash, _ := NewHash256FromString("0000000000000000000000000000000000000000000000000000000000000002")
	tx := NewTransaction(1, []TxInput{{
		PreviousOutput: OutPoint{Hash: prevHash, Index: 0},
		Sequence:       0xffffffff,
	}}, []TxOutput{{
		Value:        4900000000,
		ScriptPubKey: prevScript,
	}}, 0)

	hash, err := tx.HashForSigning(0, prevScript, SigHashAll)
	if err != nil {
		t.Fatalf("HashForSigning: %v", err)
	}
	sig := ecdsa.Sign(other, hash)
	der := append(sig.Serialize(), SigHashAll)

	wrongPubKey := other.PubKey().SerializeCompressed()
	scriptSig := []byte{byte(len(der))}
	scriptSig = append(scriptSig, der...)
	scriptSig = append(scriptSig, byte(len(wrongPubKey)))
	scriptSig = append(scriptSig, wrongPubKey...)
	tx.Inputs[0].ScriptSig = scriptSig

	utxoSet := NewUTXOSet()
	utxoSet.Add(NewUTXO(prevHash, 0, 5000000000, prevScript))
	inputCtx, err := utxoSet.InputContext(tx, 0)
	if err != nil {
		t.Fatalf("InputContext: %v", err)
	}

	err = script.VerifyTransactionInput(inputCtx, scriptSig, ScriptHasher{}, script.ScriptVerifyP2SH)
	if err != script.ErrVerifyFailed {
		t.Fatalf("expected ErrVerifyFailed from OP_EQUALVERIFY on a pubkey-hash mismatch, got %v", err)
	}
}
