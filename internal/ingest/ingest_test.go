package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
)

const sampleOutput = `{
  "sources": {
    "contracts/Foo.sol": {
      "id": 0,
      "ast": {
        "nodeType": "SourceUnit",
        "src": "0:120:0",
        "nodes": [
          {
            "nodeType": "ContractDefinition",
            "src": "20:100:0",
            "name": "Foo",
            "abstract": false,
            "contractKind": "contract",
            "baseContracts": [],
            "nodes": [
              {
                "nodeType": "VariableDeclaration",
                "src": "40:20:0",
                "name": "x",
                "constant": false,
                "stateVariable": true,
                "visibility": "public",
                "mutability": "mutable",
                "typeDescriptions": {
                  "typeIdentifier": "t_uint256",
                  "typeString": "uint256"
                },
                "typeName": {
                  "nodeType": "ElementaryTypeName",
                  "src": "40:4:0",
                  "name": "uint256"
                },
                "value": {
                  "nodeType": "Literal",
                  "src": "60:1:0",
                  "kind": "number",
                  "value": "5",
                  "isConstant": false,
                  "isPure": true
                }
              }
            ]
          }
        ]
      }
    }
  },
  "errors": [
    {"severity": "warning", "message": "unused variable", "formattedMessage": "Warning: unused variable"}
  ]
}`

func TestParseBuildsTree(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleOutput))
	require.NoError(t, err)

	require.Equal(t, []string{"contracts/Foo.sol"}, doc.Order)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "warning", doc.Errors[0].Severity)

	root := doc.Sources["contracts/Foo.sol"]
	require.NotNil(t, root)
	assert.Equal(t, ast.KindSourceUnit, root.Kind)
	assert.Equal(t, ast.Span{Start: 0, End: 120, ContractID: 0}, root.Span)

	contracts := ast.Contracts(root)
	require.Len(t, contracts, 1)
	contract := contracts[0]
	assert.Equal(t, "Foo", contract.GetString("name"))
	assert.False(t, contract.GetBool("abstract"))

	members := contract.GetList("nodes")
	require.Equal(t, 1, members.Len())
	decl := members.GetNode(0)
	require.NotNil(t, decl)
	assert.Equal(t, ast.KindVariableDeclaration, decl.Kind)
	assert.Equal(t, "x", decl.GetString("name"))
	assert.Same(t, contract, decl.Parent())

	value := decl.GetNode("value")
	require.NotNil(t, value)
	assert.Equal(t, ast.KindLiteral, value.Kind)
	assert.Equal(t, "5", value.GetString("value"))
	assert.Same(t, decl, value.Parent())

	typeName := decl.GetNode("typeName")
	require.NotNil(t, typeName)
	assert.Equal(t, "uint256", typeName.GetString("name"))

	typeDescriptions, ok := decl.Get("typeDescriptions").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "t_uint256", typeDescriptions["typeIdentifier"])
}

func TestParsePreservesSourceOrder(t *testing.T) {
	const multi = `{
	  "sources": {
	    "b.sol": {"id": 1, "ast": {"nodeType": "SourceUnit", "src": "0:1:1", "nodes": []}},
	    "a.sol": {"id": 0, "ast": {"nodeType": "SourceUnit", "src": "0:1:0", "nodes": []}}
	  }
	}`

	doc, err := Parse(strings.NewReader(multi))
	require.NoError(t, err)
	assert.Equal(t, []string{"b.sol", "a.sol"}, doc.Order)
}

func TestFromRawRejectsMissingNodeType(t *testing.T) {
	_, err := FromRaw(map[string]any{"src": "0:1:0"})
	require.Error(t, err)

	var malformed *ast.MalformedAST
	assert.ErrorAs(t, err, &malformed)
}

func TestFromRawUnknownKindStillBuildsGenericNode(t *testing.T) {
	n, err := FromRaw(map[string]any{
		"nodeType": "YulBlock",
		"src":      "0:1:0",
	})
	require.NoError(t, err)
	assert.Equal(t, ast.Kind("YulBlock"), n.Kind)
}
