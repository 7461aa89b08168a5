package script

import "errors"

// Parse and size errors: the raw bytes do not form a well-formed script.
// ErrElementTooBig is returned by the engine when it reaches an oversized
// push, not by ParseScript.
var (
	ErrScriptTooLong   = errors.New("script: exceeds maximum length of 10000 bytes")
	ErrTruncatedPush   = errors.New("script: push operation exceeds script bounds")
	ErrElementTooBig   = errors.New("script: pushed element exceeds 520 bytes")
)

// Policy errors: the script parses, but violates an opt-in standardness rule.
var (
	ErrNotPushOnly          = errors.New("script: scriptSig is not push-only")
	ErrNonMinimalPush       = errors.New("script: push data is not minimally encoded")
	ErrDiscouragedUpgradableNop = errors.New("script: upgradable NOP used with discourage flag set")
	ErrNonNullDummy         = errors.New("script: OP_CHECKMULTISIG dummy element is not empty")
)

// Execution errors: the script fails during evaluation.
var (
	ErrStackUnderflow      = errors.New("script: stack underflow")
	ErrStackOverflow       = errors.New("script: combined stack exceeds 1000 items")
	ErrDisabledOpcode      = errors.New("script: disabled opcode")
	ErrInvalidOpcode       = errors.New("script: invalid or always-failing opcode")
	ErrUnbalancedConditional = errors.New("script: OP_ELSE or OP_ENDIF without matching OP_IF/OP_NOTIF")
	ErrMissingEndif        = errors.New("script: OP_ENDIF missing at end of script")
	ErrVerifyFailed        = errors.New("script: OP_VERIFY failed")
	ErrNumberTooLong       = errors.New("script: numeric value exceeds 4-byte decode limit")
	ErrInvalidArgument     = errors.New("script: invalid argument for opcode")
	ErrTooManyPubkeys      = errors.New("script: too many public keys for OP_CHECKMULTISIG")
	ErrTooManySignatures   = errors.New("script: too many signatures for OP_CHECKMULTISIG")
	ErrInvalidSignatureEncoding = errors.New("script: invalid signature encoding")
	ErrInvalidPubKeyEncoding    = errors.New("script: invalid public key encoding")
	ErrNoSignatureChecker       = errors.New("script: OP_CHECKSIG/OP_CHECKMULTISIG used with no signature checker configured")
)

// ScriptResultFalse is not a failure of evaluation — both scripts ran to
// completion but the resulting stack's top value is false (or the stack
// is empty). Verify callers should treat this the same as "spend denied"
// but distinguish it from a genuine error when logging.
var ErrScriptResultFalse = errors.New("script: verification failed, top of stack is false")
