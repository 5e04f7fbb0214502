// Package profile holds the build-specific constants the bytecode decoder
// needs — expected version byte, the two section tag bytes, and the
// debug-info flag bit — as data rather than as compile-time constants, so
// that targeting an unlisted QuickJS build is a matter of constructing or
// loading a Profile value, never a recompile.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Profile bundles the constants a single Decode call is resolved against.
// A Profile is immutable for the life of a decode: nothing in the decoder's
// hot path branches on anything in here beyond the values read once at the
// start of the call.
type Profile struct {
	Name                string `yaml:"name"`
	ExpectedVersion     byte   `yaml:"expected_version"`
	ModuleTag           byte   `yaml:"module_tag"`
	FunctionBytecodeTag byte   `yaml:"function_bytecode_tag"`
	DebugInfoFlagBit    uint   `yaml:"debug_info_flag_bit"`
}

// Default targets bytecode version 67 (the BIGNUM-enabled QuickJS build),
// with FunctionBytecode=12 and Module=13 — the one internally-consistent
// tag mapping found across the reference sources — and debug info flagged
// by bit 9 of a function's header flags.
var Default = Profile{
	Name:                "default",
	ExpectedVersion:     67,
	ModuleTag:           13,
	FunctionBytecodeTag: 12,
	DebugInfoFlagBit:    9,
}

// HasDebugInfo reports whether flags (a function header's raw flags word)
// has this profile's debug-info bit set.
func (p Profile) HasDebugInfo(flags uint16) bool {
	return flags&(1<<p.DebugInfoFlagBit) != 0
}

// LoadFile reads a Profile from a YAML document at path. Fields absent
// from the document retain Go's zero value; callers targeting a partial
// override should start from Default and only override what differs,
// e.g. by loading into a copy.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: reading %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("profile: parsing %s: %w", path, err)
	}
	return p, nil
}
