// Package ingest decodes the Solidity compiler's standard-JSON output
// (spec.md §6) into the generic ast.Node model (spec.md §4.3). It uses
// nothing but encoding/json — see DESIGN.md for why no third-party JSON
// library is wired here.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/goudunz1/solobfus/internal/ast"
)

// CompilerError mirrors one entry of solc's standard-JSON "errors" array.
type CompilerError struct {
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

// Document is the ingested form of a standard-output JSON document: the
// ordered list of source paths (preserving the compiler's own
// map-iteration order, per spec.md §4.3) and their parsed SourceUnit
// roots.
type Document struct {
	Order   []string
	Sources map[string]*ast.Node
	Errors  []CompilerError
}

// sourceEntryDoc mirrors one value in the standard-output "sources" map:
// {"ast": <node>, "id": <int>}.
type sourceEntryDoc struct {
	AST json.RawMessage `json:"ast"`
	ID  int             `json:"id"`
}

// Parse decodes a standard-output JSON document from r, preserving the
// insertion order of the top-level "sources" object (encoding/json's
// map decoding does not, so the object is walked token-by-token).
func Parse(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	doc := &Document{Sources: make(map[string]*ast.Node)}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("ingest: reading top-level key: %w", err)
		}
		key, _ := keyTok.(string)

		switch key {
		case "sources":
			if err := parseSources(dec, doc); err != nil {
				return nil, err
			}
		case "errors":
			var errs []CompilerError
			if err := dec.Decode(&errs); err != nil {
				return nil, fmt.Errorf("ingest: decoding errors: %w", err)
			}
			doc.Errors = errs
		default:
			var discard any
			if err := dec.Decode(&discard); err != nil {
				return nil, fmt.Errorf("ingest: skipping key %q: %w", key, err)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("ingest: closing top-level object: %w", err)
	}

	return doc, nil
}

func parseSources(dec *json.Decoder, doc *Document) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	for dec.More() {
		pathTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("ingest: reading source path: %w", err)
		}
		path, _ := pathTok.(string)

		var entry sourceEntryDoc
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("ingest: decoding source entry %q: %w", path, err)
		}

		var raw map[string]any
		if err := json.Unmarshal(entry.AST, &raw); err != nil {
			return fmt.Errorf("ingest: decoding AST for %q: %w", path, err)
		}

		root, err := FromRaw(raw)
		if err != nil {
			return fmt.Errorf("ingest: building AST for %q: %w", path, err)
		}

		doc.Order = append(doc.Order, path)
		doc.Sources[path] = root
	}

	_, err := dec.Token() // closing '}'
	return err
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("ingest: expected %q, got %v", want, tok)
	}
	return nil
}

// FromRaw converts one already-decoded JSON object (as produced by
// json.Unmarshal into map[string]any) into an *ast.Node tree. This is
// the Go rendition of node_class_factory in solidity/utils.py: a
// dictionary with a "nodeType" key becomes a Node of the matching kind;
// lists recurse; other dictionaries ride along as opaque sub-attributes.
func FromRaw(raw map[string]any) (*ast.Node, error) {
	nodeTypeVal, ok := raw["nodeType"]
	if !ok {
		return nil, ast.NewMalformedAST("", "object has no nodeType")
	}
	nodeType, _ := nodeTypeVal.(string)

	n := ast.NewNode(ast.Kind(nodeType))
	if !knownKind(ast.Kind(nodeType)) {
		log.Printf("ingest: node of type %q isn't supported yet, using a generic node", nodeType)
	}

	if srcVal, ok := raw["src"].(string); ok {
		n.Span = parseSrc(srcVal)
	} else {
		n.Span = ast.Span{ContractID: -1}
	}

	for key, value := range raw {
		if key == "nodeType" || key == "src" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		n.Set(key, converted)
	}

	return n, nil
}

// convertValue recurses through a decoded JSON value, turning every
// dict that carries a "nodeType" into an *ast.Node, every list into a
// []any suitable for ast.Node.Set, and leaving everything else (plain
// dicts such as typeDescriptions, scalars) untouched.
func convertValue(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if _, ok := v["nodeType"]; ok {
			return FromRaw(v)
		}
		return v, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			converted, err := convertValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}

// parseSrc parses a "start:length:contractId" source-span triple into
// an ast.Span, mirroring NodeBase.__init__'s src handling in
// solidity/nodes.py.
func parseSrc(src string) ast.Span {
	parts := strings.Split(src, ":")
	if len(parts) != 3 {
		return ast.Span{ContractID: -1}
	}
	start, _ := strconv.Atoi(parts[0])
	length, _ := strconv.Atoi(parts[1])
	contractID, _ := strconv.Atoi(parts[2])
	return ast.Span{Start: start, End: start + length, ContractID: contractID}
}

var allKinds = map[ast.Kind]bool{
	ast.KindSourceUnit: true, ast.KindPragmaDirective: true, ast.KindContractDefinition: true,
	ast.KindInheritanceSpecifier: true, ast.KindUserDefinedValueTypeDefinition: true,
	ast.KindFunctionDefinition: true, ast.KindModifierInvocation: true, ast.KindOverrideSpecifier: true,
	ast.KindModifierDefinition: true, ast.KindParameterList: true, ast.KindEventDefinition: true,
	ast.KindErrorDefinition: true, ast.KindEnumDefinition: true, ast.KindEnumValue: true,
	ast.KindStructDefinition: true, ast.KindVariableDeclaration: true,
	ast.KindElementaryTypeNameExpression: true, ast.KindElementaryTypeName: true,
	ast.KindUserDefinedTypeName: true, ast.KindArrayTypeName: true, ast.KindIdentifierPath: true,
	ast.KindMapping: true, ast.KindBlock: true, ast.KindPlaceholderStatement: true,
	ast.KindVariableDeclarationStatement: true, ast.KindExpressionStatement: true,
	ast.KindEmitStatement: true, ast.KindRevertStatement: true, ast.KindIfStatement: true,
	ast.KindForStatement: true, ast.KindWhileStatement: true, ast.KindDoWhileStatement: true,
	ast.KindReturn: true, ast.KindBreak: true, ast.KindContinue: true, ast.KindTupleExpression: true,
	ast.KindFunctionCall: true, ast.KindMemberAccess: true, ast.KindIndexAccess: true,
	ast.KindIndexRangeAccess: true, ast.KindUnaryOperation: true, ast.KindBinaryOperation: true,
	ast.KindAssignment: true, ast.KindLiteral: true, ast.KindIdentifier: true,
}

func knownKind(k ast.Kind) bool { return allKinds[k] }
