package main

import (
	"fmt"
	"os"

	"github.com/sensepost/edbxtract/diag"
	"github.com/sensepost/edbxtract/ese"
)

// eseMagic is the signature at byte offset 4 of a JET Blue/ESE database
// file ([MS-JET] file header), used only to distinguish "not an EDB" from
// "EDB, but this tool has no parser wired for it" — spec.md §1 explicitly
// excludes a hard dependency on any one ESE-parsing library, so this
// module ships the `ese.Database` capability interface and leaves
// concrete parsing to whatever backend the caller wires in via
// OpenDatabase.
var eseMagic = []byte{0x89, 0xAB, 0xCD, 0xEF}

// OpenDatabase resolves path to an ese.Database. The default
// implementation validates the file looks like an ESE database and then
// reports that no concrete backend is wired; callers embedding this tool
// as a library replace this var with a real parser before invoking the
// CLI commands.
var OpenDatabase = func(path string) (ese.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindInputNotFound, path, -1, "", err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, _ := f.Read(header)
	if n < 8 || !bytesEqual(header[4:8], eseMagic) {
		return nil, diag.New(diag.KindMalformedDatabase, path, "file does not carry the ESE/JET Blue signature")
	}

	return nil, diag.New(diag.KindMalformedDatabase, path,
		"no ESE backend is wired into this build; OpenDatabase must be replaced with a concrete parser")
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func findTable(db ese.Database, name string) (ese.Table, error) {
	tables, err := db.Tables()
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("table %q not found", name)
}
