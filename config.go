package tvmabi

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tos-network/tvmabi/abi/codegen"
	"github.com/tos-network/tvmabi/abi/lower"
	"github.com/tos-network/tvmabi/abi/parser"
)

// Options is the user-facing generator configuration, as read from a
// tvmabi.yaml profile.
type Options struct {
	Package     string                     `mapstructure:"package" yaml:"package"`
	Descriptors bool                       `mapstructure:"descriptors" yaml:"descriptors"`
	Overrides   map[string]OverrideOptions `mapstructure:"overrides" yaml:"overrides"`
}

// OverrideOptions maps one scalar type to a Go type.
type OverrideOptions struct {
	Type   string `mapstructure:"type" yaml:"type"`
	Import string `mapstructure:"import" yaml:"import"`
	Hint   string `mapstructure:"hint" yaml:"hint"`
}

func DefaultOptions() Options {
	return Options{Package: "abi"}
}

// CodegenConfig validates o and builds a generator config. Override keys
// may use any spelling of a scalar type; they are stored canonically.
func (o Options) CodegenConfig(log *zap.SugaredLogger) (codegen.Config, error) {
	cfg := codegen.DefaultConfig()
	cfg.Log = log
	cfg.Descriptors = o.Descriptors
	if pkg := strings.TrimSpace(o.Package); pkg != "" {
		cfg.Package = pkg
	}
	if len(o.Overrides) == 0 {
		return cfg, nil
	}
	overrides := make(map[string]lower.Override, len(o.Overrides))
	for key, ov := range o.Overrides {
		t, err := parser.ParseType(key, nil)
		if err != nil {
			return codegen.Config{}, fmt.Errorf("override %q: %w", key, err)
		}
		if !t.IsScalar() {
			return codegen.Config{}, fmt.Errorf("override %q: only scalar types can be overridden", key)
		}
		if strings.TrimSpace(ov.Type) == "" {
			return codegen.Config{}, fmt.Errorf("override %q: type is required", key)
		}
		overrides[t.Signature()] = lower.Override{
			GoType: lower.GoType{Expr: strings.TrimSpace(ov.Type), Import: strings.TrimSpace(ov.Import)},
			Hint:   strings.TrimSpace(ov.Hint),
		}
	}
	cfg.Types = cfg.Types.With(overrides)
	return cfg, nil
}
