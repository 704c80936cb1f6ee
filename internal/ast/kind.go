// Package ast implements the generic Solidity AST node model: a closed
// enumeration of node kinds backed by a single attribute-bag Node type,
// plus the bind/unbind machinery that keeps parent/child links intact
// across mutation.
package ast

// Kind tags a Node with its position in the closed Solidity AST node
// enumeration. Unlike a tagged-union implementation, Kind does not change
// the storage shape of a Node — it only drives the per-kind behavior in
// tokenize.go and the builders in build.go.
type Kind string

const (
	KindSourceUnit                     Kind = "SourceUnit"
	KindPragmaDirective                Kind = "PragmaDirective"
	KindContractDefinition             Kind = "ContractDefinition"
	KindInheritanceSpecifier           Kind = "InheritanceSpecifier"
	KindUserDefinedValueTypeDefinition Kind = "UserDefinedValueTypeDefinition"
	KindFunctionDefinition             Kind = "FunctionDefinition"
	KindModifierInvocation             Kind = "ModifierInvocation"
	KindOverrideSpecifier              Kind = "OverrideSpecifier"
	KindModifierDefinition             Kind = "ModifierDefinition"
	KindParameterList                  Kind = "ParameterList"
	KindEventDefinition                Kind = "EventDefinition"
	KindErrorDefinition                Kind = "ErrorDefinition"
	KindEnumDefinition                 Kind = "EnumDefinition"
	KindEnumValue                      Kind = "EnumValue"
	KindStructDefinition               Kind = "StructDefinition"
	KindVariableDeclaration            Kind = "VariableDeclaration"
	KindElementaryTypeNameExpression   Kind = "ElementaryTypeNameExpression"
	KindElementaryTypeName             Kind = "ElementaryTypeName"
	KindUserDefinedTypeName            Kind = "UserDefinedTypeName"
	KindArrayTypeName                  Kind = "ArrayTypeName"
	KindIdentifierPath                 Kind = "IdentifierPath"
	KindMapping                        Kind = "Mapping"
	KindBlock                          Kind = "Block"
	KindPlaceholderStatement           Kind = "PlaceholderStatement"
	KindVariableDeclarationStatement   Kind = "VariableDeclarationStatement"
	KindExpressionStatement            Kind = "ExpressionStatement"
	KindEmitStatement                  Kind = "EmitStatement"
	KindRevertStatement                Kind = "RevertStatement"
	KindIfStatement                    Kind = "IfStatement"
	KindForStatement                   Kind = "ForStatement"
	KindWhileStatement                 Kind = "WhileStatement"
	KindDoWhileStatement               Kind = "DoWhileStatement"
	KindReturn                         Kind = "Return"
	KindBreak                          Kind = "Break"
	KindContinue                       Kind = "Continue"
	KindTupleExpression                Kind = "TupleExpression"
	KindFunctionCall                   Kind = "FunctionCall"
	KindMemberAccess                   Kind = "MemberAccess"
	KindIndexAccess                    Kind = "IndexAccess"
	KindIndexRangeAccess               Kind = "IndexRangeAccess"
	KindUnaryOperation                 Kind = "UnaryOperation"
	KindBinaryOperation                Kind = "BinaryOperation"
	KindAssignment                     Kind = "Assignment"
	KindLiteral                        Kind = "Literal"
	KindIdentifier                     Kind = "Identifier"
)

// iterableBodyAttr names, for each iterable-node kind, the single field
// holding the ordered sequence of semantic children (spec.md §3's
// "Iterable node" refinement). Kinds absent from this map are not
// iterable nodes.
var iterableBodyAttr = map[Kind]string{
	KindSourceUnit:         "nodes",
	KindContractDefinition: "nodes",
	KindBlock:              "statements",
	KindParameterList:      "parameters",
	KindEnumDefinition:     "members",
	KindStructDefinition:   "members",
	KindTupleExpression:    "components",
	KindFunctionCall:       "arguments",
}

// IsIterable reports whether k designates an iterable-node refinement,
// and if so returns the name of its body field.
func IsIterable(k Kind) (string, bool) {
	attr, ok := iterableBodyAttr[k]
	return attr, ok
}

// IsBranchStatement reports whether k is in the CFF pass's BRANCH_STMT
// tuple (if, for, while, do-while).
func IsBranchStatement(k Kind) bool {
	switch k {
	case KindIfStatement, KindForStatement, KindWhileStatement, KindDoWhileStatement:
		return true
	default:
		return false
	}
}
