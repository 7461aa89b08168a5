// Package config loads named verification-flag presets, letting
// cmd/scriptcheck and cmd/scriptsrv pick a policy by name instead of
// spelling out a flag bitset on the command line every time.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/bitcoinecho/script/pkg/script"
)

// Preset names recognized by Load.
const (
	PresetStandard       = "standard"
	PresetConsensusLegacy = "consensus-legacy"
	PresetStrict         = "strict"
)

var presetFlags = map[string]script.Flags{
	// consensus-legacy: bare script-level consensus rules only, no
	// policy flags — what a script validated before soft forks like
	// BIP16/62/66 would have enforced.
	PresetConsensusLegacy: 0,

	// standard: what relay/mempool policy enforces today.
	PresetStandard: script.ScriptVerifyP2SH |
		script.ScriptVerifyStrictEnc |
		script.ScriptVerifyDERSig |
		script.ScriptVerifyLowS |
		script.ScriptVerifyNullDummy |
		script.ScriptVerifySigPushOnly |
		script.ScriptVerifyMinimalData,

	// strict: standard, plus discouraging upgradable NOPs so an
	// unrecognized soft fork doesn't silently validate as a no-op.
	PresetStrict: script.ScriptVerifyP2SH |
		script.ScriptVerifyStrictEnc |
		script.ScriptVerifyDERSig |
		script.ScriptVerifyLowS |
		script.ScriptVerifyNullDummy |
		script.ScriptVerifySigPushOnly |
		script.ScriptVerifyMinimalData |
		script.ScriptVerifyDiscourageUpgradableNops,
}

// Config is the resolved, typed configuration commands build a
// *script.Context around.
type Config struct {
	Preset    string
	Flags     script.Flags
	LogLevel  string
}

// Load reads configuration from (in increasing priority) a config
// file, environment variables prefixed SCRIPTCHECK_, and already-bound
// pflags, following the viper layering the go-coffee example wires its
// services with.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix("SCRIPTCHECK")
	v.AutomaticEnv()
	v.SetDefault("preset", PresetStandard)
	v.SetDefault("log-level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	preset := strings.ToLower(v.GetString("preset"))
	flags, ok := presetFlags[preset]
	if !ok {
		return nil, fmt.Errorf("config: unknown verification preset %q", preset)
	}

	return &Config{
		Preset:   preset,
		Flags:    flags,
		LogLevel: v.GetString("log-level"),
	}, nil
}

// PresetNames lists the presets Load accepts, for CLI help text.
func PresetNames() []string {
	return []string{PresetConsensusLegacy, PresetStandard, PresetStrict}
}
