package internal

import (
	"strings"

	"go.uber.org/zap"

	"github.com/shmorph/shmorph/internal/mutators"
	"github.com/shmorph/shmorph/internal/syntax"
)

// maxRounds bounds the fixpoint iteration. Mutators can enable each other
// (an array rewrite may produce arithmetic that the arithmetic mutator then
// lowers), so the chain re-runs until the text stops changing.
const maxRounds = 10

// skipDirective marks a script that must pass through untouched.
const skipDirective = "# shmorph:skip"

// Chain applies every registered mutator to a script, round after round,
// until the output reaches a fixpoint or the round cap is hit.
type Chain struct {
	parser          *syntax.Parser
	mutators        []Mutator
	ignoredMutators map[string]bool
	logger          *zap.Logger
}

// mutatorConstructor builds one mutator bound to a shared parser.
type mutatorConstructor func(p *syntax.Parser) Mutator

// allMutatorConstructors lists every mutator in registration order. The
// order is part of the contract: later mutators see the text produced by
// earlier ones within the same round.
var allMutatorConstructors = []mutatorConstructor{
	NewArithmeticExpansionMutator,
	NewArrayMutator,
	NewBraceExpansionMutator,
	NewConditionalExpressionsMutator,
	NewDirectoryStackMutator,
	NewFunctionsMutator,
	NewHereStringsMutator,
	NewLocalVariablesMutator,
	NewPipelineMutator,
	NewProcessSubstitutionMutator,
	NewRedirectionsMutator,
	NewVariableAssignmentMutator,
}

// NewChain creates a mutation chain with the default mutator set.
func NewChain(logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := syntax.NewParser()

	chain := &Chain{
		parser: parser,
		logger: logger,
	}
	for _, ctor := range allMutatorConstructors {
		chain.mutators = append(chain.mutators, ctor(parser))
	}
	return chain
}

// IgnoreMutator removes a mutator from the run by name.
func (c *Chain) IgnoreMutator(name string) {
	if c.ignoredMutators == nil {
		c.ignoredMutators = make(map[string]bool)
	}
	c.ignoredMutators[name] = true
}

// Mutators returns the names of all active mutators in run order.
func (c *Chain) Mutators() []string {
	names := make([]string, 0, len(c.mutators))
	for _, m := range c.mutators {
		if !c.ignoredMutators[m.Name()] {
			names = append(names, m.Name())
		}
	}
	return names
}

// Run pushes source through the chain and returns the rewritten script plus
// the accumulated context (seen features, array bookkeeping).
func (c *Chain) Run(source string) (string, *mutators.Context, error) {
	ctx := mutators.NewContext()

	if hasSkipDirective(source) {
		c.logger.Debug("skip directive found, passing script through")
		return source, ctx, nil
	}

	current := source
	for round := 1; round <= maxRounds; round++ {
		previous := current

		for _, m := range c.mutators {
			if c.ignoredMutators[m.Name()] {
				continue
			}
			next, err := m.Transform(current, ctx)
			if err != nil {
				return current, ctx, err
			}
			if next != current {
				c.logger.Debug("mutator rewrote script",
					zap.String("mutator", m.Name()),
					zap.Int("round", round))
			}
			current = next
		}

		if current == previous {
			c.logger.Debug("chain reached fixpoint", zap.Int("rounds", round))
			return current, ctx, nil
		}
	}

	c.logger.Warn("chain hit round cap before reaching fixpoint",
		zap.Int("rounds", maxRounds))
	return current, ctx, nil
}

// hasSkipDirective looks for the skip marker in the leading comment block.
func hasSkipDirective(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if strings.HasPrefix(trimmed, skipDirective) {
				return true
			}
			continue
		}
		return false
	}
	return false
}
