// Command scriptcheck runs and verifies Bitcoin scripts from the
// command line: a single scriptPubKey, a scriptSig/scriptPubKey pair,
// or a disassembly of raw script bytes.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bitcoinecho/script/internal/config"
	"github.com/bitcoinecho/script/pkg/bitcoin"
	"github.com/bitcoinecho/script/pkg/script"
)

const version = "0.1.0-dev"

var (
	presetFlag string
	cfgFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scriptcheck",
		Short: "Run, verify, and disassemble Bitcoin scripts",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none)")
	root.PersistentFlags().StringVar(&presetFlag, "preset", "", "verification preset: "+presetList())

	root.AddCommand(newRunCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newVerifyTxCmd())
	root.AddCommand(newDisasmCmd())
	root.AddCommand(newMultisigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func presetList() string {
	names := config.PresetNames()
	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}
	return out
}

func loadConfig() (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if presetFlag != "" {
		v.Set("preset", presetFlag)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: building logger: %w", err)
	}
	bitcoin.SetLogger(logger.Sugar())
	return cfg, nil
}

func parseScriptArg(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: invalid hex script: %w", err)
	}
	return raw, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script-hex>",
		Short: "Execute a single script with an empty starting stack and print the final stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			raw, err := parseScriptArg(args[0])
			if err != nil {
				return err
			}
			ops, err := script.ParseScript(raw)
			if err != nil {
				return err
			}
			ctx := &script.Context{Flags: cfg.Flags, Hash: bitcoin.ScriptHasher{}, Trace: bitcoin.ScriptTracer{}}
			e := script.NewEngine(ctx, ops, nil)
			if err := e.Run(); err != nil {
				return err
			}
			for i, item := range e.Stack() {
				fmt.Printf("%d: %s\n", i, hex.EncodeToString(item))
			}
			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <scriptSig-hex> <scriptPubKey-hex>",
		Short: "Verify a scriptSig against a scriptPubKey",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sigScript, err := parseScriptArg(args[0])
			if err != nil {
				return err
			}
			pubKeyScript, err := parseScriptArg(args[1])
			if err != nil {
				return err
			}

			ctx := &script.Context{
				Flags: cfg.Flags,
				Hash:  bitcoin.ScriptHasher{},
				Trace: bitcoin.ScriptTracer{},
			}
			if err := script.VerifyScripts(sigScript, pubKeyScript, ctx); err != nil {
				fmt.Printf("INVALID: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("VALID")
			return nil
		},
	}
}

// newVerifyTxCmd verifies one input of a real, serialized transaction
// against its previous output, driving the legacy sighash algorithm and
// the decred secp256k1 verifier end to end rather than the stubbed
// SignatureChecker the other verify/run commands leave unset.
func newVerifyTxCmd() *cobra.Command {
	var utxoFlags []string
	cmd := &cobra.Command{
		Use:   "verify-tx <tx-hex> <input-index>",
		Short: "Verify one input of a serialized transaction against its previous output(s)",
		Long: "Verify one input of a serialized transaction against its previous output(s).\n" +
			"Each --utxo flag supplies one previous output as txhash:index:amount:scriptPubKey-hex;\n" +
			"txhash must match the input's previous-output hash as OutPoint.String() prints it\n" +
			"(display byte order, the reverse of the spent transaction's Hash().String()).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			txBytes, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("scriptcheck: invalid tx hex: %w", err)
			}
			inputIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("scriptcheck: invalid input index: %w", err)
			}

			tx, err := bitcoin.DeserializeTransaction(txBytes)
			if err != nil {
				return err
			}

			utxoSet := bitcoin.NewUTXOSet()
			for _, flag := range utxoFlags {
				utxo, err := parseUTXOFlag(flag)
				if err != nil {
					return err
				}
				utxoSet.Add(utxo)
			}

			if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
				return fmt.Errorf("scriptcheck: input index %d out of range", inputIndex)
			}
			inputCtx, err := utxoSet.InputContext(tx, inputIndex)
			if err != nil {
				return err
			}

			scriptSig := tx.Inputs[inputIndex].ScriptSig
			if err := script.VerifyTransactionInput(inputCtx, scriptSig, bitcoin.ScriptHasher{}, cfg.Flags); err != nil {
				fmt.Printf("INVALID: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("VALID")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&utxoFlags, "utxo", nil, "previous output: txhash:index:amount:scriptPubKey-hex (repeatable)")
	return cmd
}

// parseUTXOFlag parses one --utxo flag value into a *bitcoin.UTXO.
func parseUTXOFlag(flag string) (*bitcoin.UTXO, error) {
	parts := strings.SplitN(flag, ":", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("scriptcheck: --utxo must be txhash:index:amount:scriptPubKey-hex, got %q", flag)
	}
	txHash, err := bitcoin.NewHash256FromString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: invalid --utxo tx hash: %w", err)
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: invalid --utxo output index: %w", err)
	}
	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: invalid --utxo amount: %w", err)
	}
	scriptPubKey, err := hex.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("scriptcheck: invalid --utxo scriptPubKey hex: %w", err)
	}
	return bitcoin.NewUTXO(txHash, uint32(index), amount, scriptPubKey), nil
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <script-hex>",
		Short: "Disassemble a script into its mnemonic opcode sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseScriptArg(args[0])
			if err != nil {
				return err
			}
			out, err := script.DisasmString(raw)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func newMultisigCmd() *cobra.Command {
	var m int
	cmd := &cobra.Command{
		Use:   "multisig <m> <pubkey-hex> [pubkey-hex...]",
		Short: "Build a bare M-of-N multisig scriptPubKey",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m = 0
			if _, err := fmt.Sscanf(args[0], "%d", &m); err != nil {
				return fmt.Errorf("scriptcheck: invalid m: %w", err)
			}
			pubKeys := make([][]byte, 0, len(args)-1)
			for _, a := range args[1:] {
				pk, err := hex.DecodeString(a)
				if err != nil {
					return fmt.Errorf("scriptcheck: invalid public key %q: %w", a, err)
				}
				pubKeys = append(pubKeys, pk)
			}
			out, err := script.CreateMultiSigMofN(m, pubKeys)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(out))
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print scriptcheck's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("scriptcheck v%s\n", version)
			return nil
		},
	}
}
