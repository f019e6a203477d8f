package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/payjar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formattedProgram = "public class Test main(@self) {\n    println(1);\n}\n"

func TestEngine_FormatFiles(t *testing.T) {
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()

	messy := testutil.WriteSource(t, dir, "messy.pj", testutil.Program("println(1);"))
	tidy := testutil.WriteSource(t, dir, "tidy.pj", formattedProgram)
	bad := testutil.WriteSource(t, dir, "bad.pj", testutil.Program("println(1)"))
	missing := filepath.Join(dir, "missing.pj")

	results, err := eng.FormatFiles(context.Background(), []string{messy, tidy, bad, missing}, false)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Changed())
	assert.Equal(t, formattedProgram, results[0].Formatted)
	assert.False(t, results[1].Changed())
	require.Error(t, results[2].Err)
	assert.False(t, results[2].Changed())
	assert.ErrorIs(t, results[3].Err, os.ErrNotExist)

	data, err := os.ReadFile(messy)
	require.NoError(t, err)
	assert.Equal(t, testutil.Program("println(1);"), string(data), "files are untouched without write")
}

func TestEngine_FormatFiles_Write(t *testing.T) {
	eng := newTestEngine(t, Config{})
	path := testutil.WriteSource(t, t.TempDir(), "messy.pj", testutil.Program("println(1);"))

	results, err := eng.FormatFiles(context.Background(), []string{path}, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formattedProgram, string(data))
}

func TestEngine_FormatFiles_Canceled(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.FormatFiles(ctx, []string{"a.pj"}, false)
	require.ErrorIs(t, err, context.Canceled)
}
