package syntax

// Node kind constants for tree-sitter-bash traversal.
//
// Reference: https://github.com/tree-sitter/tree-sitter-bash
const (
	KindProgram = "program"
	KindComment = "comment"
	KindERROR   = "ERROR"

	// Commands and statements
	KindCommand             = "command"
	KindCommandName         = "command_name"
	KindPipeline            = "pipeline"
	KindRedirectedStatement = "redirected_statement"
	KindCompoundStatement   = "compound_statement"
	KindIfStatement         = "if_statement"
	KindWhileStatement      = "while_statement"
	KindForStatement        = "for_statement"
	KindTestCommand         = "test_command"
	KindDeclarationCommand  = "declaration_command"

	// Functions
	KindFunctionDefinition = "function_definition"

	// Variables and expansions
	KindVariableAssignment = "variable_assignment"
	KindVariableName       = "variable_name"
	KindExpansion          = "expansion"
	KindSimpleExpansion    = "simple_expansion"
	KindSubscript          = "subscript"
	KindArray              = "array"

	// Redirects
	KindFileRedirect       = "file_redirect"
	KindHerestringRedirect = "herestring_redirect"

	// Words and literals
	KindWord          = "word"
	KindString        = "string"
	KindRawString     = "raw_string"
	KindNumber        = "number"
	KindConcatenation = "concatenation"

	// Expressions
	KindBinaryExpression    = "binary_expression"
	KindUnaryExpression     = "unary_expression"
	KindBraceExpression     = "brace_expression"
	KindArithmeticExpansion = "arithmetic_expansion"
	KindProcessSubstitution = "process_substitution"
)

// Named fields exposed by tree-sitter-bash.
const (
	FieldName      = "name"
	FieldValue     = "value"
	FieldIndex     = "index"
	FieldLeft      = "left"
	FieldRight     = "right"
	FieldBody      = "body"
	FieldCondition = "condition"
)
