package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensepost/edbxtract/diag"
)

func TestOpenDatabase_InputNotFound(t *testing.T) {
	_, err := OpenDatabase(filepath.Join(t.TempDir(), "missing.edb"))
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.KindInputNotFound, de.Kind)
}

func TestOpenDatabase_RejectsNonESESignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-edb.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an edb file at all"), 0644))

	_, err := OpenDatabase(path)
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.KindMalformedDatabase, de.Kind)
}

func TestOpenDatabase_ValidSignatureReportsNoBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looks-like.edb")
	header := make([]byte, 12)
	copy(header[4:8], eseMagic)
	require.NoError(t, os.WriteFile(path, header, 0644))

	_, err := OpenDatabase(path)
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.KindMalformedDatabase, de.Kind)
	require.Contains(t, de.Hint, "no ESE backend is wired")
}

func TestBytesEqual(t *testing.T) {
	require.True(t, bytesEqual([]byte{1, 2, 3}, []byte{1, 2, 3}))
	require.False(t, bytesEqual([]byte{1, 2}, []byte{1, 2, 3}))
	require.False(t, bytesEqual([]byte{1, 2, 3}, []byte{1, 2, 4}))
}
