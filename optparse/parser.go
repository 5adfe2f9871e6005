package optparse

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-cliconf/config"
	"github.com/goliatone/go-cliconf/logger"
)

const DefaultUsage = "%prog [options]"

// Store is the configuration collaborator. Items is only read after a
// successful Load.
type Store interface {
	Load(ctx context.Context) error
	Items() []config.Item
}

// Parser resolves option defaults from a Store and parses command line
// flags on top of them. Each call to ResolveDefaults, Parse or Help is an
// independent resolution cycle.
type Parser struct {
	name        string
	prog        string
	usage       string
	description string
	epilog      string
	main        bool
	noConfig    bool

	registry  *Registry
	store     Store
	formatter *HelpFormatter
	logger    logger.Logger
	stderr    io.Writer
	stdout    io.Writer
	exit      func(int)
}

type ParserOption func(*Parser)

// WithUsage sets the usage line. %prog expands to the program name.
func WithUsage(usage string) ParserOption {
	return func(p *Parser) {
		p.usage = usage
	}
}

// WithProg sets the program name used for %prog and error messages.
func WithProg(prog string) ParserOption {
	return func(p *Parser) {
		p.prog = prog
	}
}

func WithDescription(description string) ParserOption {
	return func(p *Parser) {
		p.description = description
	}
}

func WithEpilog(epilog string) ParserOption {
	return func(p *Parser) {
		p.epilog = epilog
	}
}

// WithMain marks the parser as a multi-command entry point.
func WithMain() ParserOption {
	return func(p *Parser) {
		p.main = true
	}
}

func WithLogger(l logger.Logger) ParserOption {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOutput sets the diagnostic stream for usage and error messages.
func WithOutput(w io.Writer) ParserOption {
	return func(p *Parser) {
		if w != nil {
			p.stderr = w
		}
	}
}

// WithStdout sets the stream help text is printed to.
func WithStdout(w io.Writer) ParserOption {
	return func(p *Parser) {
		if w != nil {
			p.stdout = w
		}
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(fn func(int)) ParserOption {
	return func(p *Parser) {
		if fn != nil {
			p.exit = fn
		}
	}
}

func WithFormatter(f *HelpFormatter) ParserOption {
	return func(p *Parser) {
		if f != nil {
			p.formatter = f
		}
	}
}

// WithoutConfig skips the store, defaults come from the registry only.
func WithoutConfig() ParserOption {
	return func(p *Parser) {
		p.noConfig = true
	}
}

// NewParser creates a parser for command name. The name selects the command
// scope of the store. store may be nil, which behaves like WithoutConfig.
func NewParser(name string, registry *Registry, store Store, opts ...ParserOption) (*Parser, error) {
	if registry == nil {
		return nil, errors.New("parser requires an option registry", errors.CategoryBadInput).
			WithTextCode("MISSING_REGISTRY").
			WithMetadata(map[string]any{
				"command": name,
			})
	}

	p := &Parser{
		name:     name,
		prog:     filepath.Base(os.Args[0]),
		usage:    DefaultUsage,
		registry: registry,
		store:    store,
		stderr:   os.Stderr,
		stdout:   os.Stdout,
		exit:     os.Exit,
	}
	if name != "" {
		p.logger = logger.NewDefaultLogger(name).WithLevel(logger.LevelError)
	} else {
		p.logger = logger.Nop()
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.formatter == nil {
		p.formatter = NewHelpFormatter()
	}
	if store == nil {
		p.noConfig = true
	}

	return p, nil
}

func (p *Parser) Name() string { return p.name }

func (p *Parser) Registry() *Registry { return p.registry }

// ResolveDefaults runs one resolution cycle: load the store, order its
// entries by scope, fold them over the registry defaults and check string
// defaults against their option's value rule. Store failures are returned
// as *ConfigLoadError, conversion failures as *CoercionError.
func (p *Parser) ResolveDefaults(ctx context.Context) (*Defaults, error) {
	var pairs []Pair
	if !p.noConfig {
		if err := p.store.Load(ctx); err != nil {
			return nil, &ConfigLoadError{Err: err}
		}
		pairs = Resolve(Entries(p.store.Items(), p.name), p.logger)
	}

	values, err := buildDefaults(p.registry, pairs, p.logger)
	if err != nil {
		return nil, err
	}

	if err := p.checkStringDefaults(values); err != nil {
		return nil, err
	}

	return newDefaults(values)
}

// checkStringDefaults converts string defaults that never went through
// flag parsing.
func (p *Parser) checkStringDefaults(values map[string]any) error {
	for _, opt := range p.registry.Options() {
		s, ok := values[opt.Dest].(string)
		if !ok {
			continue
		}

		var (
			v   any
			err error
		)
		switch opt.Action {
		case ActionPlain, ActionAppend, ActionCallback:
			v, err = coercePlain(opt, s)
		default:
			v, err = Coerce(opt, s, nil)
		}
		if err != nil {
			return err
		}
		values[opt.Dest] = v
	}
	return nil
}

// DefaultValues is ResolveDefaults for command entry points. A store failure
// exits with StatusUnknownError, a conversion failure goes through Error.
func (p *Parser) DefaultValues(ctx context.Context) *Defaults {
	defaults, err := p.ResolveDefaults(ctx)
	if err == nil {
		return defaults
	}

	if stderrors.Is(err, ErrConfigLoad) {
		p.Exit(StatusUnknownError, err.Error()+"\n")
		return nil
	}
	p.Error(err.Error())
	return nil
}

// Parse resolves defaults and parses args over them. The returned slice
// holds the positional arguments. Unknown flags and invalid flag values
// fail with *UsageError; -h or --help returns ErrHelp unless the registry
// defines its own help option.
func (p *Parser) Parse(ctx context.Context, args []string) (*Values, []string, error) {
	defaults, err := p.ResolveDefaults(ctx)
	if err != nil {
		return nil, nil, err
	}

	evalCtx := NewEvalContext(defaults.Map())
	fs := pflag.NewFlagSet(p.prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.Usage = func() {}

	flags := make(map[string]*flagValue)
	for _, opt := range p.registry.Options() {
		fv := newFlagValue(opt, defaults.Get(opt.Dest), evalCtx)
		f := fs.VarPF(fv, opt.Key, opt.Short, opt.Help)
		f.NoOptDefVal = noOptDefault(opt)
		f.Hidden = opt.Hidden
		flags[opt.Key] = fv
	}

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return nil, nil, ErrHelp
		}
		return nil, nil, &UsageError{Message: err.Error(), Err: err}
	}

	values, err := newValues(defaults, fs, flags, evalCtx)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryOperation, "failed to merge option values").
			WithTextCode("VALUES_MERGE_FAILED").
			WithMetadata(map[string]any{
				"command": p.name,
			})
	}

	return values, values.Args(), nil
}

// ParseOrExit is Parse for command entry points. Help is printed to stdout
// with status 0, every other failure terminates with StatusUnknownError.
func (p *Parser) ParseOrExit(ctx context.Context, args []string) (*Values, []string) {
	values, rest, err := p.Parse(ctx, args)
	if err == nil {
		return values, rest
	}

	switch {
	case stderrors.Is(err, ErrHelp):
		help, herr := p.Help(ctx)
		if herr != nil {
			p.Exit(StatusUnknownError, herr.Error()+"\n")
			return nil, nil
		}
		fmt.Fprint(p.stdout, help)
		p.exit(0)
	case stderrors.Is(err, ErrConfigLoad):
		p.Exit(StatusUnknownError, err.Error()+"\n")
	default:
		p.Error(err.Error())
	}
	return nil, nil
}

// Error prints the usage and msg to the diagnostic stream, then exits with
// StatusUnknownError.
func (p *Parser) Error(msg string) {
	p.PrintUsage(p.stderr)
	p.Exit(StatusUnknownError, fmt.Sprintf("%s: error: %s\n", p.prog, msg))
}

// Exit writes msg to the diagnostic stream and terminates with status.
func (p *Parser) Exit(status int, msg string) {
	if msg != "" {
		fmt.Fprint(p.stderr, msg)
	}
	p.exit(status)
}

// Usage renders the usage block.
func (p *Parser) Usage() string {
	return p.formatter.FormatUsage(p.expandProg(p.usage))
}

func (p *Parser) PrintUsage(w io.Writer) {
	if p.usage == "" {
		return
	}
	fmt.Fprint(w, p.Usage())
}

// Help renders the full help text using freshly resolved defaults.
func (p *Parser) Help(ctx context.Context) (string, error) {
	defaults, err := p.ResolveDefaults(ctx)
	if err != nil {
		return "", err
	}
	return p.formatter.FormatHelp(p.helpDoc(defaults)), nil
}

func (p *Parser) helpDoc(defaults *Defaults) HelpDoc {
	groups := p.registry.Groups()
	if help, ok := p.helpOption(); ok {
		groups = withHelpOption(groups, help)
	}
	return HelpDoc{
		Usage:       p.expandProg(p.usage),
		Description: p.description,
		Epilog:      p.epilog,
		Main:        p.main,
		Groups:      groups,
		Defaults:    defaults,
	}
}

// helpOption describes the built in -h/--help flag when the registry
// does not claim it.
func (p *Parser) helpOption() (Option, bool) {
	if _, ok := p.registry.Lookup("help"); ok {
		return Option{}, false
	}
	opt := Option{
		Key:    "help",
		Dest:   "help",
		Action: ActionFlagTrue,
		Help:   "Show help.",
		Group:  DefaultGroup,
	}
	if _, taken := p.registry.byShort["h"]; !taken {
		opt.Short = "h"
	}
	return opt, true
}

func withHelpOption(groups []Group, help Option) []Group {
	out := make([]Group, 0, len(groups)+1)
	found := false
	for _, g := range groups {
		if g.Name == DefaultGroup {
			g.Options = append([]Option{help}, g.Options...)
			found = true
		}
		out = append(out, g)
	}
	if !found {
		out = append([]Group{{Name: DefaultGroup, Options: []Option{help}}}, out...)
	}
	return out
}

func (p *Parser) expandProg(s string) string {
	return strings.ReplaceAll(s, "%prog", p.prog)
}
