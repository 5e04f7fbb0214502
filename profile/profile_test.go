package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	require.Equal(t, byte(67), Default.ExpectedVersion)
	require.Equal(t, byte(13), Default.ModuleTag)
	require.Equal(t, byte(12), Default.FunctionBytecodeTag)
	require.Equal(t, uint(9), Default.DebugInfoFlagBit)
}

func TestHasDebugInfo(t *testing.T) {
	require.True(t, Default.HasDebugInfo(1<<9))
	require.False(t, Default.HasDebugInfo(0))
	require.True(t, Default.HasDebugInfo(1<<9|0x01))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	doc := "name: custom\nexpected_version: 68\nmodule_tag: 14\nfunction_bytecode_tag: 15\ndebug_info_flag_bit: 9\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "custom", p.Name)
	require.Equal(t, byte(68), p.ExpectedVersion)
	require.Equal(t, byte(14), p.ModuleTag)
	require.Equal(t, byte(15), p.FunctionBytecodeTag)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/profile.yaml")
	require.Error(t, err)
}
