package tvmabi

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/tos-network/tvmabi/abi/codegen"
)

// SourceHash fingerprints an interface document.
func SourceHash(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// GeneratedSourceHash returns the fingerprint recorded in a generated
// file's header comments, or "" when there is none.
func GeneratedSourceHash(generated []byte) string {
	marker := "// " + codegen.SourceHashPrefix
	sc := bufio.NewScanner(bytes.NewReader(generated))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "package ") {
			break
		}
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return ""
}

// VerifyGeneratedSource checks that generated was produced from source.
func VerifyGeneratedSource(generated, source []byte) error {
	got := GeneratedSourceHash(generated)
	if got == "" {
		return fmt.Errorf("generated file carries no source hash")
	}
	want := SourceHash(source)
	if strings.ToLower(got) != want {
		return fmt.Errorf("source hash mismatch: got=%s want=%s", got, want)
	}
	return nil
}
