package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tos-network/tvmabi/abi/codegen"
)

const walletDoc = `{
  "ABI version": 2,
  "version": "2.2",
  "functions": [
    {"name": "submit", "inputs": [{"name": "entry", "type": "tuple", "components": [{"name": "a", "type": "uint256"}, {"name": "b", "type": "bool"}]}], "outputs": []},
    {"name": "owner", "inputs": [], "outputs": [{"name": "value", "type": "address"}]}
  ],
  "events": [
    {"name": "Submitted", "inputs": [{"name": "n", "type": "uint32"}]}
  ]
}`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseText(t *testing.T) {
	code, out, errOut := runCLI(t, "parse", "map(uint256, addr)[]")
	if code != 0 {
		t.Fatalf("parse exit code: got=%d want=0 stderr=%s", code, errOut)
	}
	if !strings.Contains(out, "cell (map(uint256,address)[])") || !strings.Contains(out, "value0: map(uint256,address)[]") {
		t.Fatalf("unexpected parse output:\n%s", out)
	}

	code, out, _ = runCLI(t, "parse", "foo(uint32)(bool)v2")
	if code != 0 {
		t.Fatalf("parse exit code: got=%d want=0", code)
	}
	if !strings.HasPrefix(out, "function foo v2.2\n") || !strings.Contains(out, "in  value0: uint32") {
		t.Fatalf("unexpected function output:\n%s", out)
	}
}

func TestParseFormats(t *testing.T) {
	code, out, _ := runCLI(t, "parse", "--format", "json", "(uint256, addr)")
	if code != 0 {
		t.Fatalf("parse json exit code: %d", code)
	}
	if !strings.Contains(out, `"kind": "cell"`) || !strings.Contains(out, `"type": "address"`) {
		t.Fatalf("unexpected json output:\n%s", out)
	}

	code, out, _ = runCLI(t, "parse", "-f", "yaml", "foo(uint32)(bool)")
	if code != 0 {
		t.Fatalf("parse yaml exit code: %d", code)
	}
	if !strings.Contains(out, "kind: function") || !strings.Contains(out, "name: foo") || !strings.Contains(out, "inputId:") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}

	code, _, errOut := runCLI(t, "parse", "-f", "xml", "uint8")
	if code != 1 || !strings.Contains(errOut, "unsupported --format") {
		t.Fatalf("expected format error, got code=%d stderr=%s", code, errOut)
	}
}

func TestParseFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fn.json", `{"name": "ping", "inputs": [], "outputs": [{"name": "ok", "type": "bool"}]}`)
	code, out, errOut := runCLI(t, "parse", "--file", path)
	if code != 0 {
		t.Fatalf("parse --file exit code: %d stderr=%s", code, errOut)
	}
	if !strings.HasPrefix(out, "function ping") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestParseError(t *testing.T) {
	code, _, errOut := runCLI(t, "parse", "uint300")
	if code != 1 {
		t.Fatalf("parse exit code: got=%d want=1", code)
	}
	if !strings.Contains(errOut, "ABI1004") {
		t.Fatalf("expected out of range diagnostic, got %s", errOut)
	}
}

func TestID(t *testing.T) {
	code, out, _ := runCLI(t, "id", "foo#0x2a(uint32)(bool)")
	if code != 0 {
		t.Fatalf("id exit code: %d", code)
	}
	if out != "input=0x0000002a output=0x0000002a\n" {
		t.Fatalf("unexpected id output: %q", out)
	}
	code, _, errOut := runCLI(t, "id", "uint8")
	if code != 1 || !strings.Contains(errOut, "not a function declaration") {
		t.Fatalf("expected error, got code=%d stderr=%s", code, errOut)
	}
}

func TestGenFromSignature(t *testing.T) {
	code, out, errOut := runCLI(t, "gen", "--package", "demo", "uint256, (uint8, bool)[]")
	if code != 0 {
		t.Fatalf("gen exit code: %d stderr=%s", code, errOut)
	}
	for _, want := range []string{"package demo", "type CommonStruct struct", "type InternalStruct1 struct"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	code, out, _ = runCLI(t, "gen", "")
	if code != 0 || out != "" {
		t.Fatalf("empty input must generate nothing, got code=%d out=%q", code, out)
	}
}

func TestGenContractWithProfileAndVerify(t *testing.T) {
	dir := t.TempDir()
	contract := writeFile(t, dir, "wallet.abi.json", walletDoc)
	profile := writeFile(t, dir, "dev.yaml", `codegen:
  package: wallet
  descriptors: true
  overrides:
    uint32:
      type: Counter
      hint: counter
`)
	output := filepath.Join(dir, "wallet_abi.go")

	code, _, errOut := runCLI(t, "gen", "--config", profile, "--contract", contract, "-o", output)
	if code != 0 {
		t.Fatalf("gen exit code: %d stderr=%s", code, errOut)
	}
	body, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	src := string(body)
	for _, want := range []string{
		"package wallet",
		"// " + codegen.SourceHashPrefix + "0x",
		"type SubmitFunctionInput struct",
		"type OwnerFunctionOutput struct",
		"type SubmittedEventOutput struct",
		"N Counter",
		"func SubmitFunction() *ast.Function {",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}

	code, out, _ := runCLI(t, "verify", output, contract)
	if code != 0 || !strings.HasPrefix(out, "ok: ") {
		t.Fatalf("verify exit code: %d out=%s", code, out)
	}

	changed := writeFile(t, dir, "changed.abi.json", strings.Replace(walletDoc, "uint32", "uint64", 1))
	code, _, errOut = runCLI(t, "verify", output, changed)
	if code != 2 || !strings.Contains(errOut, "mismatch") {
		t.Fatalf("verify mismatch exit code: got=%d want=2 stderr=%s", code, errOut)
	}
}

func TestGenFlagOverridesEnv(t *testing.T) {
	t.Setenv("TVMABI_CODEGEN_PACKAGE", "fromenv")
	code, out, _ := runCLI(t, "gen", "bool")
	if code != 0 || !strings.Contains(out, "package fromenv") {
		t.Fatalf("env package not applied: code=%d\n%s", code, out)
	}
	code, out, _ = runCLI(t, "gen", "--package", "fromflag", "bool")
	if code != 0 || !strings.Contains(out, "package fromflag") {
		t.Fatalf("flag package not applied: code=%d\n%s", code, out)
	}
}

func TestMissingExplicitProfile(t *testing.T) {
	code, _, errOut := runCLI(t, "gen", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "bool")
	if code != 1 || !strings.Contains(errOut, "reading profile") {
		t.Fatalf("expected profile error, got code=%d stderr=%s", code, errOut)
	}
}

func TestSigsAndCheck(t *testing.T) {
	dir := t.TempDir()
	contract := writeFile(t, dir, "wallet.abi.json", walletDoc)
	code, out, errOut := runCLI(t, "sigs", contract)
	if code != 0 {
		t.Fatalf("sigs exit code: %d stderr=%s", code, errOut)
	}
	if !strings.Contains(out, "function submit((uint256,bool))()v2 input=0x") || !strings.Contains(out, "event Submitted(uint32)v2 id=0x") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	text := out
	listing := writeFile(t, dir, "wallet.sigs", text)
	code, out, _ = runCLI(t, "sigs", "--check", listing)
	if code != 0 || out != "ok: abi 2.2, 2 function(s), 1 event(s)\n" {
		t.Fatalf("check failed: code=%d out=%q", code, out)
	}

	bad := writeFile(t, dir, "bad.sigs", strings.Replace(text, "abi", "api", 1))
	code, _, _ = runCLI(t, "sigs", "--check", bad)
	if code != 2 {
		t.Fatalf("check exit code: got=%d want=2", code)
	}
}

func TestReplSession(t *testing.T) {
	var out bytes.Buffer
	s := &replSession{out: &out, cfg: codegen.DefaultConfig()}

	if !s.feed("uint8,") {
		t.Fatalf("trailing comma must ask for more input")
	}
	if s.feed("bool") {
		t.Fatalf("completed input must not ask for more")
	}
	if !strings.Contains(out.String(), "cell (uint8,bool)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	s.feed(":gen uint8")
	if !strings.Contains(out.String(), "type CommonStruct struct") {
		t.Fatalf("unexpected :gen output:\n%s", out.String())
	}

	out.Reset()
	s.feed(":gen foo(uint8)()")
	if !strings.Contains(out.String(), "type FooFunctionInput struct") {
		t.Fatalf("unexpected :gen output:\n%s", out.String())
	}

	out.Reset()
	s.feed(":json foo(uint8)(bool)")
	if !strings.Contains(out.String(), `"kind": "function"`) {
		t.Fatalf("unexpected :json output:\n%s", out.String())
	}

	out.Reset()
	if s.feed("uint300") {
		t.Fatalf("range errors are not incomplete input")
	}
	if !strings.Contains(out.String(), "ABI1004") {
		t.Fatalf("unexpected error output:\n%s", out.String())
	}

	out.Reset()
	s.feed(":nope")
	if !strings.Contains(out.String(), "unknown command :nope") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
