package ast

// Span records the absolute source offsets of a node (start, end) plus
// the origin contract id as given by the standard compiler JSON's "src"
// triple. Synthetic nodes built by the builders in build.go carry the
// zero Span (0, 0, -1), per spec.md §4.1.
type Span struct {
	Start, End int
	ContractID int
}

// Node is the universal AST element (spec.md §3). Storage is a generic,
// per-kind attribute bag rather than ~44 hand-written struct types —
// see DESIGN.md for why. Values held in attrs are one of: a primitive
// (string, bool, int), a *Node, a *NodeList (Set promotes every Go
// slice to one), or an opaque map[string]any sub-document (e.g.
// typeDescriptions) carried through unexamined.
type Node struct {
	Kind Kind
	Span Span

	parent   *Node
	fields   map[string]struct{}
	order    []string
	attrs    map[string]any
	children map[*Node]string
}

// NewNode allocates an empty Node of the given kind.
func NewNode(kind Kind) *Node {
	return &Node{
		Kind:     kind,
		fields:   make(map[string]struct{}),
		attrs:    make(map[string]any),
		children: make(map[*Node]string),
	}
}

// Parent returns the owning Node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children exposes the child→field-name registry (spec.md §3's
// "children" mapping). Callers must not mutate the returned map.
func (n *Node) Children() map[*Node]string { return n.children }

// Fields returns the name of every attribute ever set on n, in
// first-assignment order. Structural fields and metadata such as
// typeDescriptions are not told apart: both are listed.
func (n *Node) Fields() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

func (n *Node) Has(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

func (n *Node) Get(name string) any { return n.attrs[name] }

func (n *Node) GetNode(name string) *Node {
	v, _ := n.attrs[name].(*Node)
	return v
}

func (n *Node) GetList(name string) *NodeList {
	v, _ := n.attrs[name].(*NodeList)
	return v
}

func (n *Node) GetString(name string) string {
	v, _ := n.attrs[name].(string)
	return v
}

func (n *Node) GetBool(name string) bool {
	v, _ := n.attrs[name].(bool)
	return v
}

func (n *Node) GetInt(name string) int {
	v, _ := n.attrs[name].(int)
	return v
}

// Main returns the ordered body of an iterable-node refinement (spec.md
// §3). It returns nil if Kind is not an iterable kind (see
// ast.IsIterable) or if the body field has not been set.
func (n *Node) Main() *NodeList {
	attr, ok := IsIterable(n.Kind)
	if !ok {
		return nil
	}
	return n.GetList(attr)
}

// SetMain replaces the body of an iterable-node refinement.
func (n *Node) SetMain(items []any) {
	attr, ok := IsIterable(n.Kind)
	if !ok {
		return
	}
	n.Set(attr, items)
}

// Set implements set_field (spec.md §4.1): unbind whatever previously
// occupied the field, bind the new value if it is a Node or a raw Go
// slice (promoted to a *NodeList), and record the field in first-seen
// order.
func (n *Node) Set(name string, value any) {
	if _, seen := n.attrs[name]; !seen {
		n.fields[name] = struct{}{}
		n.order = append(n.order, name)
	}

	if old, ok := n.attrs[name]; ok {
		switch o := old.(type) {
		case *Node:
			n.unbindChild(o)
		case *NodeList:
			for _, item := range o.items {
				if child, ok := item.(*Node); ok {
					n.unbindChild(child)
				}
			}
		}
	}

	switch v := value.(type) {
	case *Node:
		value = n.bindChild(v, name)
	case *NodeList:
		v.parent = n
		v.key = name
		for i, item := range v.items {
			if child, ok := item.(*Node); ok {
				v.items[i] = n.bindChild(child, name)
			}
		}
	case []any:
		value = newNodeList(v, n, name)
	case []*Node:
		raw := make([]any, len(v))
		for i, x := range v {
			raw[i] = x
		}
		value = newNodeList(raw, n, name)
	case []string:
		raw := make([]any, len(v))
		for i, x := range v {
			raw[i] = x
		}
		value = newNodeList(raw, n, name)
	}

	n.attrs[name] = value
}

// bindChild implements _bind: if child already belongs to a different
// parent, clone it first so the tree property (single owner) is
// preserved (spec.md §3 invariant, §9 "deep-copy on re-parent").
func (n *Node) bindChild(child *Node, key string) *Node {
	if child.parent != nil && child.parent != n {
		child = child.Clone()
	}
	child.parent = n
	n.children[child] = key
	return child
}

// unbindChild implements _unbind.
func (n *Node) unbindChild(child *Node) {
	if child.parent == n {
		delete(n.children, child)
		child.parent = nil
	}
}

// Clone deep-copies a Node and its entire subtree; the clone has no
// parent. Used automatically by bindChild when re-parenting an
// already-owned node.
func (n *Node) Clone() *Node {
	out := NewNode(n.Kind)
	out.Span = n.Span
	out.order = append([]string(nil), n.order...)
	for k := range n.fields {
		out.fields[k] = struct{}{}
	}

	for _, name := range n.order {
		v := n.attrs[name]
		switch val := v.(type) {
		case *Node:
			clone := val.Clone()
			clone.parent = out
			out.children[clone] = name
			out.attrs[name] = clone
		case *NodeList:
			clonedItems := make([]any, len(val.items))
			for i, item := range val.items {
				if child, ok := item.(*Node); ok {
					c := child.Clone()
					c.parent = out
					out.children[c] = name
					clonedItems[i] = c
				} else {
					clonedItems[i] = item
				}
			}
			out.attrs[name] = &NodeList{items: clonedItems, parent: out, key: name}
		default:
			out.attrs[name] = v
		}
	}
	return out
}

// ReplaceWith substitutes new in old's owning slot (scalar field or
// list element) and rewires parent/child bookkeeping. This corrects a
// latent bug in the Python original's replace_with (see DESIGN.md):
// when the owning field is a list, only the slot at old's index is
// replaced, found by an O(n) scan, rather than clobbering the whole
// list.
func ReplaceWith(old, neu *Node) error {
	parent := old.parent
	if parent == nil {
		return NewMalformedAST(old.Kind, "cannot replace a root node")
	}
	fieldName, ok := parent.children[old]
	if !ok {
		return NewMalformedAST(old.Kind, "node not registered in parent's children map")
	}

	switch v := parent.attrs[fieldName].(type) {
	case *NodeList:
		idx := -1
		for i, item := range v.items {
			if child, ok := item.(*Node); ok && child == old {
				idx = i
				break
			}
		}
		if idx < 0 {
			return NewMalformedAST(old.Kind, "node not found in owning list field %q", fieldName)
		}
		v.Set(idx, neu)
	default:
		parent.Set(fieldName, neu)
	}
	return nil
}
