package lang

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Param is the optional parameter of a command call, the text after the last
// underscore of "get_2".
type Param struct {
	Text  string
	Valid bool
}

// Int parses the parameter as a base-10 integer.
func (p Param) Int() (int, bool) {
	if !p.Valid {
		return 0, false
	}

	n, err := strconv.Atoi(p.Text)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Command transforms a value. Commands are attached to keys and
// placeholders with the command separator, as in "drops!list" or
// "loot!get_0".
type Command interface {
	Run(v Value, p Param) (Value, error)
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(v Value, p Param) (Value, error)

// Run calls f(v, p).
func (f CommandFunc) Run(v Value, p Param) (Value, error) { return f(v, p) }

// Chain is an ordered list of command calls, each in "name" or
// "name_param" form.
type Chain []string

// ParseChain splits s on sep into a chain. Empty calls are dropped.
func ParseChain(s string, sep rune) Chain {
	if s == "" {
		return nil
	}

	var c Chain

	for call := range strings.SplitSeq(s, string(sep)) {
		if call = strings.TrimSpace(call); call != "" {
			c = append(c, call)
		}
	}

	return c
}

// Has reports whether any call in c names one of the given commands.
func (c Chain) Has(names ...string) bool {
	for _, call := range c {
		name, _, _ := splitCall(call)
		if slices.Contains(names, call) || slices.Contains(names, name) {
			return true
		}
	}

	return false
}

// String joins the chain with sep.
func (c Chain) String(sep rune) string {
	return strings.Join(c, string(sep))
}

// Registry maps command names and shorthand symbols to commands.
//
// A registry accepts registrations until its first lookup, after which it
// is frozen and further registration fails with ErrRegistryFrozen. Frozen
// registries are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	frozen     atomic.Bool
	commands   map[string]Command
	shorthands map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]Command),
		shorthands: make(map[string]string),
	}
}

// DefaultRegistry returns a new registry holding the built-in commands and
// shorthands.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for name, fn := range builtins() {
		r.commands[name] = fn
	}

	for sym, name := range builtinShorthands() {
		r.shorthands[sym] = name
	}

	return r
}

// Register adds or replaces the command called name.
func (r *Registry) Register(name string, c Command) error {
	if name == "" || c == nil {
		return ErrCommand.With(slog.String("reason", "empty name or nil command"))
	}

	if r.frozen.Load() {
		return ErrRegistryFrozen.With(slog.String("command", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = c

	return nil
}

// RegisterFunc adds or replaces the command called name with fn.
func (r *Registry) RegisterFunc(
	name string,
	fn func(v Value, p Param) (Value, error),
) error {
	return r.Register(name, CommandFunc(fn))
}

// RegisterShorthand maps a key suffix such as "[]" to a command name.
func (r *Registry) RegisterShorthand(symbol, name string) error {
	if symbol == "" || name == "" {
		return ErrCommand.With(slog.String("reason", "empty shorthand"))
	}

	if r.frozen.Load() {
		return ErrRegistryFrozen.With(slog.String("shorthand", symbol))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.shorthands[symbol] = name

	return nil
}

// Freeze stops the registry from accepting registrations.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Clone returns an unfrozen copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for k, v := range r.commands {
		c.commands[k] = v
	}

	for k, v := range r.shorthands {
		c.shorthands[k] = v
	}

	return c
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for k := range r.commands {
		names = append(names, k)
	}

	slices.Sort(names)

	return names
}

// Shorthands returns the registered shorthand symbols, longest first so that
// suffix matching prefers "(!)" over "()".
func (r *Registry) Shorthands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	syms := make([]string, 0, len(r.shorthands))
	for k := range r.shorthands {
		syms = append(syms, k)
	}

	slices.SortFunc(syms, func(a, b string) int {
		if n := len(b) - len(a); n != 0 {
			return n
		}

		return strings.Compare(a, b)
	})

	return syms
}

// Shorthand returns the command name mapped to symbol.
func (r *Registry) Shorthand(symbol string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.shorthands[symbol]

	return name, ok
}

// TrimShorthand removes a registered shorthand suffix from key, returning
// the trimmed key and the command name it maps to.
func (r *Registry) TrimShorthand(key string) (string, string, bool) {
	for _, sym := range r.Shorthands() {
		if base, ok := strings.CutSuffix(key, sym); ok {
			name, _ := r.Shorthand(sym)

			return base, name, true
		}
	}

	return key, "", false
}

// Lookup resolves a call to a command and its parameter. An exact name
// match wins; otherwise the text after the last underscore that follows a
// registered name is taken as the parameter. Lookup freezes the registry.
func (r *Registry) Lookup(call string) (Command, Param, error) {
	r.Freeze()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.commands[call]; ok {
		return c, Param{}, nil
	}

	if name, ok := r.shorthands[call]; ok {
		if c, ok := r.commands[name]; ok {
			return c, Param{}, nil
		}
	}

	// Prefer the longest registered name, so "get_max_hp" resolves to
	// get("max_hp") only when no "get_max" command exists.
	for i := strings.LastIndexByte(call, '_'); i > 0; i = strings.LastIndexByte(call[:i], '_') {
		if i == len(call)-1 {
			continue
		}

		if c, ok := r.commands[call[:i]]; ok {
			return c, Param{Text: call[i+1:], Valid: true}, nil
		}
	}

	return nil, Param{}, &CommandError{Command: call, Reason: "unknown command"}
}

// Apply runs each call of chain on v in order.
func (r *Registry) Apply(v Value, chain Chain) (Value, error) {
	for _, call := range chain {
		c, p, err := r.Lookup(call)
		if err != nil {
			return Value{}, err
		}

		v, err = c.Run(v, p)
		if err != nil {
			return Value{}, commandError(call, err)
		}
	}

	return v, nil
}

func splitCall(call string) (string, string, bool) {
	i := strings.LastIndexByte(call, '_')
	if i <= 0 || i == len(call)-1 {
		return call, "", false
	}

	return call[:i], call[i+1:], true
}

// commandError makes sure err is a *CommandError naming call.
func commandError(call string, err error) error {
	if ce, ok := err.(*CommandError); ok {
		if ce.Command == "" {
			ce.Command = call
		}

		return ce
	}

	return &CommandError{Command: call, Reason: "failed", Err: err}
}
