package internal

import (
	"github.com/shmorph/shmorph/internal/mutators"
	"github.com/shmorph/shmorph/internal/syntax"
)

/*
* Implement each mutator as a separate struct
 */

// Mutator defines the interface for all script mutators.
type Mutator interface {
	// Transform rewrites one Bash construct family in source and records
	// what it saw in ctx.
	Transform(source string, ctx *mutators.Context) (string, error)

	// Name returns the name of the mutator.
	Name() string
}

type ArithmeticExpansionMutator struct{ parser *syntax.Parser }

func NewArithmeticExpansionMutator(p *syntax.Parser) Mutator {
	return &ArithmeticExpansionMutator{parser: p}
}

func (m *ArithmeticExpansionMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformArithmeticExpansion(m.parser, source, ctx)
}

func (m *ArithmeticExpansionMutator) Name() string {
	return "arithmetic-expansion"
}

type ArrayMutator struct{ parser *syntax.Parser }

func NewArrayMutator(p *syntax.Parser) Mutator {
	return &ArrayMutator{parser: p}
}

func (m *ArrayMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformArrays(m.parser, source, ctx)
}

func (m *ArrayMutator) Name() string {
	return "array"
}

type BraceExpansionMutator struct{ parser *syntax.Parser }

func NewBraceExpansionMutator(p *syntax.Parser) Mutator {
	return &BraceExpansionMutator{parser: p}
}

func (m *BraceExpansionMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformBraceExpansion(m.parser, source, ctx)
}

func (m *BraceExpansionMutator) Name() string {
	return "brace-expansion"
}

type ConditionalExpressionsMutator struct{ parser *syntax.Parser }

func NewConditionalExpressionsMutator(p *syntax.Parser) Mutator {
	return &ConditionalExpressionsMutator{parser: p}
}

func (m *ConditionalExpressionsMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformConditionalExpressions(m.parser, source, ctx)
}

func (m *ConditionalExpressionsMutator) Name() string {
	return "conditional-expressions"
}

type DirectoryStackMutator struct{ parser *syntax.Parser }

func NewDirectoryStackMutator(p *syntax.Parser) Mutator {
	return &DirectoryStackMutator{parser: p}
}

func (m *DirectoryStackMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformDirectoryStack(m.parser, source, ctx)
}

func (m *DirectoryStackMutator) Name() string {
	return "directory-stack"
}

type FunctionsMutator struct{ parser *syntax.Parser }

func NewFunctionsMutator(p *syntax.Parser) Mutator {
	return &FunctionsMutator{parser: p}
}

func (m *FunctionsMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformFunctions(m.parser, source, ctx)
}

func (m *FunctionsMutator) Name() string {
	return "functions"
}

type HereStringsMutator struct{ parser *syntax.Parser }

func NewHereStringsMutator(p *syntax.Parser) Mutator {
	return &HereStringsMutator{parser: p}
}

func (m *HereStringsMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformHereStrings(m.parser, source, ctx)
}

func (m *HereStringsMutator) Name() string {
	return "here-strings"
}

type LocalVariablesMutator struct{ parser *syntax.Parser }

func NewLocalVariablesMutator(p *syntax.Parser) Mutator {
	return &LocalVariablesMutator{parser: p}
}

func (m *LocalVariablesMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformLocalVariables(m.parser, source, ctx)
}

func (m *LocalVariablesMutator) Name() string {
	return "local-variables"
}

type PipelineMutator struct{ parser *syntax.Parser }

func NewPipelineMutator(p *syntax.Parser) Mutator {
	return &PipelineMutator{parser: p}
}

func (m *PipelineMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformPipelines(m.parser, source, ctx)
}

func (m *PipelineMutator) Name() string {
	return "pipeline"
}

type ProcessSubstitutionMutator struct{ parser *syntax.Parser }

func NewProcessSubstitutionMutator(p *syntax.Parser) Mutator {
	return &ProcessSubstitutionMutator{parser: p}
}

func (m *ProcessSubstitutionMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformProcessSubstitution(m.parser, source, ctx)
}

func (m *ProcessSubstitutionMutator) Name() string {
	return "process-substitution"
}

type RedirectionsMutator struct{ parser *syntax.Parser }

func NewRedirectionsMutator(p *syntax.Parser) Mutator {
	return &RedirectionsMutator{parser: p}
}

func (m *RedirectionsMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformRedirections(m.parser, source, ctx)
}

func (m *RedirectionsMutator) Name() string {
	return "redirections"
}

type VariableAssignmentMutator struct{ parser *syntax.Parser }

func NewVariableAssignmentMutator(p *syntax.Parser) Mutator {
	return &VariableAssignmentMutator{parser: p}
}

func (m *VariableAssignmentMutator) Transform(source string, ctx *mutators.Context) (string, error) {
	return mutators.TransformVariableAssignment(m.parser, source, ctx)
}

func (m *VariableAssignmentMutator) Name() string {
	return "variable-assignment"
}
