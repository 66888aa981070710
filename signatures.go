package tvmabi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/parser"
	"github.com/tos-network/tvmabi/abi/sema"
)

// SignatureInfo summarizes a signature listing.
type SignatureInfo struct {
	Version       string
	FunctionCount int
	EventCount    int
}

// RenderSignatures lists the canonical signature and ids of every function
// and event of c, one per line, in declaration order.
func RenderSignatures(c *ast.Contract) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("signature listing requires a contract")
	}
	var b strings.Builder
	b.WriteString("abi ")
	b.WriteString(c.Version.String())
	b.WriteString("\n")
	if len(c.Functions) > 0 {
		b.WriteString("\n")
	}
	for _, fn := range c.Functions {
		if strings.TrimSpace(fn.Name) == "" {
			return nil, fmt.Errorf("signature listing requires named functions")
		}
		fmt.Fprintf(&b, "function %s input=0x%08x output=0x%08x", sema.FunctionSignature(fn), fn.InputID, fn.OutputID)
		if fn.ExplicitID {
			b.WriteString(" explicit")
		}
		b.WriteString("\n")
	}
	if len(c.Events) > 0 {
		b.WriteString("\n")
	}
	for _, ev := range c.Events {
		if strings.TrimSpace(ev.Name) == "" {
			return nil, fmt.Errorf("signature listing requires named events")
		}
		fmt.Fprintf(&b, "event %s id=0x%08x", sema.EventSignature(ev), ev.ID)
		if ev.ExplicitID {
			b.WriteString(" explicit")
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// ValidateSignatures checks a listing produced by RenderSignatures.
func ValidateSignatures(text []byte) error {
	_, err := InspectSignatures(text)
	return err
}

// InspectSignatures parses a listing back and checks that every derived id
// matches its signature.
func InspectSignatures(text []byte) (*SignatureInfo, error) {
	info := &SignatureInfo{}
	seenHeader := false
	for n, raw := range strings.Split(string(text), "\n") {
		line := normalizeSignatureLine(raw)
		if line == "" {
			continue
		}
		if !seenHeader {
			if !strings.HasPrefix(line, "abi ") {
				return nil, fmt.Errorf("signature listing must start with 'abi <version>'")
			}
			info.Version = strings.TrimSpace(strings.TrimPrefix(line, "abi "))
			if info.Version == "" {
				return nil, fmt.Errorf("signature listing version not found")
			}
			seenHeader = true
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "function":
			err = checkFunctionLine(fields[1:])
			info.FunctionCount++
		case "event":
			err = checkEventLine(fields[1:])
			info.EventCount++
		default:
			err = fmt.Errorf("unsupported line %q", line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	if !seenHeader {
		return nil, fmt.Errorf("signature listing is empty")
	}
	return info, nil
}

func checkFunctionLine(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("function line needs a signature and two ids")
	}
	ent, err := parser.Parse(fields[0])
	if err != nil {
		return err
	}
	if ent.Kind != ast.EntityFunction {
		return fmt.Errorf("%q is not a function signature", fields[0])
	}
	in, err := idField(fields[1], "input")
	if err != nil {
		return err
	}
	out, err := idField(fields[2], "output")
	if err != nil {
		return err
	}
	if len(fields) > 3 && !explicitFlag(fields[3:]) {
		return fmt.Errorf("unexpected trailing fields %q", fields[3:])
	}
	if explicitFlag(fields[3:]) {
		if in != out {
			return fmt.Errorf("explicit id must be shared by input and output")
		}
		return nil
	}
	fn := ent.Function
	if in != fn.InputID || out != fn.OutputID {
		return fmt.Errorf("ids of %s do not match: got input=0x%08x output=0x%08x want input=0x%08x output=0x%08x",
			fn.Name, in, out, fn.InputID, fn.OutputID)
	}
	return nil
}

func checkEventLine(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("event line needs a signature and an id")
	}
	sig := fields[0]
	open := strings.IndexByte(sig, '(')
	end := strings.LastIndexByte(sig, ')')
	if open <= 0 || end < open {
		return fmt.Errorf("%q is not an event signature", sig)
	}
	// Read the event as a function without outputs to reuse the parser.
	ent, err := parser.Parse(sig[:end+1] + "()" + sig[end+1:])
	if err != nil {
		return err
	}
	if ent.Kind != ast.EntityFunction {
		return fmt.Errorf("%q is not an event signature", sig)
	}
	id, err := idField(fields[1], "id")
	if err != nil {
		return err
	}
	if len(fields) > 2 && !explicitFlag(fields[2:]) {
		return fmt.Errorf("unexpected trailing fields %q", fields[2:])
	}
	if explicitFlag(fields[2:]) {
		return nil
	}
	ev := &ast.Event{Name: ent.Function.Name, Inputs: ent.Function.Inputs, Version: ent.Function.Version}
	sema.AssignEventID(ev, nil)
	if id != ev.ID {
		return fmt.Errorf("id of %s does not match: got 0x%08x want 0x%08x", ev.Name, id, ev.ID)
	}
	return nil
}

func idField(field, key string) (uint32, error) {
	v, ok := strings.CutPrefix(field, key+"=")
	if !ok {
		return 0, fmt.Errorf("expected %s=<id>, got %q", key, field)
	}
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", key, v)
	}
	return uint32(n), nil
}

func explicitFlag(rest []string) bool {
	return len(rest) == 1 && rest[0] == "explicit"
}

func normalizeSignatureLine(raw string) string {
	line := strings.TrimSpace(raw)
	if idx := strings.Index(line, "--"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line
}
