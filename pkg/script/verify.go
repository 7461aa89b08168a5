package script

// isPushOnly reports whether every token in ops only pushes data onto
// the stack — the shape SIGPUSHONLY and the P2SH recheck require of a
// scriptSig.
func isPushOnly(ops []ParsedOp) bool {
	for _, op := range ops {
		info := op.info()
		if info.pushLen != 0 {
			continue
		}
		if isSmallInt(op.Op) || op.Op == Op1Negate {
			continue
		}
		return false
	}
	return true
}

// VerifyScripts runs scriptSig then scriptPubKey in sequence, and, when
// ScriptVerifyP2SH is set and scriptPubKey is a pay-to-script-hash
// output, runs the embedded redeem script against the remaining stack
// as a second, bounded level of indirection. A nil return means the
// spend is authorized; ErrScriptResultFalse means both scripts ran
// cleanly but left a false top of stack.
func VerifyScripts(scriptSig, scriptPubKey []byte, ctx *Context) error {
	sigOps, err := ParseScript(scriptSig)
	if err != nil {
		return err
	}
	pubKeyOps, err := ParseScript(scriptPubKey)
	if err != nil {
		return err
	}

	if ctx.Flags.Has(ScriptVerifySigPushOnly) && !isPushOnly(sigOps) {
		return ErrNotPushOnly
	}

	sigEngine := NewEngine(ctx, sigOps, nil)
	if err := sigEngine.Run(); err != nil {
		return err
	}
	stackAfterSig := sigEngine.Stack()

	pubKeyEngine := NewEngine(ctx, pubKeyOps, stackAfterSig)
	if err := pubKeyEngine.Run(); err != nil {
		return err
	}
	finalStack := pubKeyEngine.Stack()

	if len(finalStack) == 0 || !castToBoolean(finalStack[len(finalStack)-1]) {
		return ErrScriptResultFalse
	}

	if !ctx.Flags.Has(ScriptVerifyP2SH) || !IsPayToScriptHash(scriptPubKey) {
		return nil
	}

	// P2SH: scriptSig must have been push-only regardless of the
	// SIGPUSHONLY flag, since the redeem script itself is about to be
	// taken from its final pushed element.
	if !isPushOnly(sigOps) {
		return ErrNotPushOnly
	}
	if len(stackAfterSig) == 0 {
		return ErrScriptResultFalse
	}

	redeemScriptBytes := stackAfterSig[len(stackAfterSig)-1]
	redeemOps, err := ParseScript(redeemScriptBytes)
	if err != nil {
		return err
	}

	innerStack := stackAfterSig[:len(stackAfterSig)-1]
	redeemEngine := NewEngine(ctx, redeemOps, innerStack)
	if err := redeemEngine.Run(); err != nil {
		return err
	}
	redeemFinal := redeemEngine.Stack()
	if len(redeemFinal) == 0 || !castToBoolean(redeemFinal[len(redeemFinal)-1]) {
		return ErrScriptResultFalse
	}
	return nil
}

// InputSource supplies whatever VerifyTransactionInput needs from a
// transaction and its inputs' previous outputs, without pkg/script
// importing pkg/bitcoin: pkg/bitcoin's TxInputContext implements
// this per-input.
type InputSource interface {
	PreviousOutputScript() []byte
	SignatureChecker() SignatureChecker
}

// VerifyTransactionInput is the convenience entry point callers use
// instead of assembling a Context by hand.
func VerifyTransactionInput(src InputSource, scriptSig []byte, hash Hasher, flags Flags) error {
	ctx := &Context{
		Flags: flags,
		Hash:  hash,
		Sig:   src.SignatureChecker(),
	}
	return VerifyScripts(scriptSig, src.PreviousOutputScript(), ctx)
}
