package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSolc writes a tiny shell script standing in for solc, so Compile
// and CheckVersion can be exercised without invoking the real
// compiler (never done from tests, only a fake subprocess).
func fakeSolc(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "solc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestCompileReturnsIngestedDocument(t *testing.T) {
	solc := fakeSolc(t, `cat <<'EOF'
{"sources":{"temp.sol":{"id":0,"ast":{"nodeType":"SourceUnit","src":"0:1:0","nodes":[]}}}}
EOF
`)

	input := filepath.Join(t.TempDir(), "A.sol")
	require.NoError(t, os.WriteFile(input, []byte("contract A {}"), 0o644))

	doc, err := Compile(context.Background(), input, Options{SolcPath: solc})
	require.NoError(t, err)
	require.Len(t, doc.Order, 1)
	assert.Equal(t, "temp.sol", doc.Order[0])
}

func TestCompileSurfacesCompilerErrors(t *testing.T) {
	solc := fakeSolc(t, `cat <<'EOF'
{"sources":{},"errors":[{"severity":"error","message":"bad","formattedMessage":"Error: bad"}]}
EOF
`)

	input := filepath.Join(t.TempDir(), "A.sol")
	require.NoError(t, os.WriteFile(input, []byte("not solidity"), 0o644))

	_, err := Compile(context.Background(), input, Options{SolcPath: solc})
	require.Error(t, err)

	var compileErr *ExternalCompile
	require.ErrorAs(t, err, &compileErr)
}

func TestCompileWrapsMissingBinary(t *testing.T) {
	input := filepath.Join(t.TempDir(), "A.sol")
	require.NoError(t, os.WriteFile(input, []byte("contract A {}"), 0o644))

	_, err := Compile(context.Background(), input, Options{SolcPath: filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)

	var compileErr *ExternalCompile
	require.ErrorAs(t, err, &compileErr)
}

func TestCheckVersionWarnsBelowMinimum(t *testing.T) {
	solc := fakeSolc(t, `echo "solc, the solidity compiler commandline interface"
echo "Version: 0.8.19+commit.7dd6d404.Linux.g++"
`)

	semver, warn, err := CheckVersion(context.Background(), solc)
	require.NoError(t, err)
	assert.Equal(t, "0.8.19", semver)
	assert.True(t, warn)
}

func TestCheckVersionAcceptsCurrent(t *testing.T) {
	solc := fakeSolc(t, `echo "Version: 0.8.28+commit.abcdefab.Linux.g++"
`)

	semver, warn, err := CheckVersion(context.Background(), solc)
	require.NoError(t, err)
	assert.Equal(t, "0.8.28", semver)
	assert.False(t, warn)
}

func TestCompareSemver(t *testing.T) {
	assert.Equal(t, -1, compareSemver("0.8.19", "0.8.28"))
	assert.Equal(t, 0, compareSemver("0.8.28", "0.8.28"))
	assert.Equal(t, 1, compareSemver("0.9.0", "0.8.28"))
}
