package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunExpandStdin(t *testing.T) {
	var out bytes.Buffer
	cfg := config{defines: []string{"PI=3.14159"}}
	err := run(cfg, nil, strings.NewReader("float r = PI;\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "float r = 3.14159;\n", out.String())
}

func TestRunExpandFile(t *testing.T) {
	dir := t.TempDir()
	hdr := filepath.Join(dir, "defs.h")
	require.NoError(t, os.WriteFile(hdr, []byte("#define W 800\n"), 0o644))
	src := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(src, []byte("#include \"defs.h\"\nint w = W;\n"), 0o644))

	var out bytes.Buffer
	err := run(config{}, []string{src}, nil, &out)
	require.NoError(t, err)
	require.Equal(t, "int w = 800;\n", out.String())
}

func TestRunTokens(t *testing.T) {
	var out bytes.Buffer
	err := run(config{tokens: true}, nil, strings.NewReader("int x;\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "1:1\tIDENT\tint\n1:5\tIDENT\tx\n1:6\t;\t;\n", out.String())
}

func TestRunCheck(t *testing.T) {
	var out bytes.Buffer
	err := run(config{check: true}, nil, strings.NewReader("#define A 1\n"), &out)
	require.NoError(t, err)
	require.Empty(t, out.String())

	err = run(config{check: true}, nil, strings.NewReader("#if 1\nint x;\n"), &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated conditional")
}

func TestRunUndefine(t *testing.T) {
	var out bytes.Buffer
	cfg := config{defines: []string{"A=1"}, undefines: []string{"A"}}
	err := run(cfg, nil, strings.NewReader("int x = A;\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "int x = A;\n", out.String())
}

func TestEnvIncludePath(t *testing.T) {
	t.Setenv("CPRE_INCLUDE_PATH", "")
	require.Nil(t, envIncludePath())

	dirs := "/opt/include" + string(os.PathListSeparator) + "/usr/local/include"
	t.Setenv("CPRE_INCLUDE_PATH", dirs)
	require.Equal(t, []string{"/opt/include", "/usr/local/include"}, envIncludePath())
}
