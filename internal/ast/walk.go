package ast

import "container/list"

// ChildNodes returns this node's semantic children in field-assignment
// order (deterministic, unlike ranging over the children map directly).
// Passes that need the Python original's unordered _children-dict walk
// may use this interchangeably — spec.md notes "order of the children
// does not matter" for the one pass (OCONST) that walks _children raw.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for _, name := range n.order {
		switch v := n.attrs[name].(type) {
		case *Node:
			out = append(out, v)
		case *NodeList:
			out = append(out, v.Nodes()...)
		}
	}
	return out
}

// Walk performs a breadth-first traversal of the tree rooted at root,
// calling visit for every node including root. If visit returns false,
// that node's children are not enqueued.
func Walk(root *Node, visit func(*Node) bool) {
	queue := list.New()
	queue.PushBack(root)
	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(*Node)
		if !visit(front) {
			continue
		}
		for _, child := range front.ChildNodes() {
			queue.PushBack(child)
		}
	}
}

// Functions yields every FunctionDefinition/ModifierDefinition reachable
// from root via SourceUnit/ContractDefinition nesting, mirroring
// SourceUnit.functions in nodes.py.
func Functions(root *Node) []*Node {
	var out []*Node
	queue := list.New()
	queue.PushBack(root)
	for queue.Len() > 0 {
		n := queue.Remove(queue.Front()).(*Node)
		switch n.Kind {
		case KindFunctionDefinition, KindModifierDefinition:
			out = append(out, n)
		case KindContractDefinition, KindSourceUnit:
			if attr, ok := IsIterable(n.Kind); ok {
				for _, child := range n.GetList(attr).Nodes() {
					queue.PushBack(child)
				}
			}
		}
	}
	return out
}

// Contracts yields every ContractDefinition directly under root,
// mirroring SourceUnit.contracts in nodes.py.
func Contracts(root *Node) []*Node {
	var out []*Node
	if root.Kind != KindSourceUnit {
		return out
	}
	for _, n := range root.GetList("nodes").Nodes() {
		if n.Kind == KindContractDefinition {
			out = append(out, n)
		}
	}
	return out
}
