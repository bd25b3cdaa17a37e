package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// RunFunc runs cmd for the cobra command cc that was bound to it.
type RunFunc func(cc *cobra.Command, cmd Command, args []string) error

// Registry is the set of nztodo commands. Commands register from init, so
// a Registry is written once at startup and only read afterwards.
type Registry struct {
	cmds  []Command
	names map[string]Command // primary names and aliases
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]Command)}
}

// Register adds c. Names and aliases share one namespace.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, k := range keys {
		if k == "" || strings.ContainsAny(k, " \t") {
			return fmt.Errorf("invalid command name %q", k)
		}
		if prev, ok := r.names[k]; ok {
			return fmt.Errorf("%q is already taken by %s", k, prev.Name())
		}
	}
	for _, k := range keys {
		r.names[k] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Lookup resolves a name or alias.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.names[name]
	return c, ok
}

// Commands returns the registered commands ordered by name.
func (r *Registry) Commands() []Command {
	out := slices.Clone(r.cmds)
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// Cobra builds one cobra command per registered command, with the command's
// flags bound to the cobra flag set. Each invocation calls run.
func (r *Registry) Cobra(run RunFunc) []*cobra.Command {
	cmds := r.Commands()
	out := make([]*cobra.Command, 0, len(cmds))
	for _, cmd := range cmds {
		cc := &cobra.Command{
			Use:     cmd.Name(),
			Aliases: cmd.Aliases(),
			Short:   cmd.Synopsis(),
			Long:    cmd.Synopsis() + "\n\nUsage: " + cmd.Usage(),
			RunE: func(cc *cobra.Command, args []string) error {
				return run(cc, cmd, args)
			},
		}
		cmd.RegisterFlags(cc.Flags())
		out = append(out, cc)
	}
	return out
}

// DefaultRegistry holds the built-in commands.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
