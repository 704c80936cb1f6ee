package ast

// NodeList is an ordered, bind/unbind-aware sequence held by a single
// field of its owning Node (spec.md §3: "for lists the reverse lookup
// yields the field name only; index lookup is O(list length)"). Items
// are either *Node or a primitive value (e.g. FunctionCall.names holds
// plain strings).
//
// This mirrors NodeBase.NodeList in the Python original: every mutator
// that introduces or removes a *Node updates the owning parent's
// children registry.
type NodeList struct {
	items  []any
	parent *Node
	key    string
}

func newNodeList(items []any, parent *Node, key string) *NodeList {
	nl := &NodeList{parent: parent, key: key}
	nl.items = make([]any, len(items))
	for i, v := range items {
		if child, ok := v.(*Node); ok {
			nl.items[i] = parent.bindChild(child, key)
		} else {
			nl.items[i] = v
		}
	}
	return nl
}

func (nl *NodeList) Len() int { return len(nl.items) }

func (nl *NodeList) Get(i int) any { return nl.items[i] }

func (nl *NodeList) GetNode(i int) *Node {
	v, _ := nl.items[i].(*Node)
	return v
}

// Items returns the raw backing slice. Callers must not retain it past
// the next mutation.
func (nl *NodeList) Items() []any { return nl.items }

// Nodes returns only the *Node-valued elements, in order.
func (nl *NodeList) Nodes() []*Node {
	out := make([]*Node, 0, len(nl.items))
	for _, v := range nl.items {
		if child, ok := v.(*Node); ok {
			out = append(out, child)
		}
	}
	return out
}

func (nl *NodeList) Set(i int, value any) {
	if old, ok := nl.items[i].(*Node); ok {
		nl.parent.unbindChild(old)
	}
	if child, ok := value.(*Node); ok {
		value = nl.parent.bindChild(child, nl.key)
	}
	nl.items[i] = value
}

func (nl *NodeList) Insert(i int, value any) {
	if child, ok := value.(*Node); ok {
		value = nl.parent.bindChild(child, nl.key)
	}
	nl.items = append(nl.items, nil)
	copy(nl.items[i+1:], nl.items[i:])
	nl.items[i] = value
}

func (nl *NodeList) Append(value any) {
	if child, ok := value.(*Node); ok {
		value = nl.parent.bindChild(child, nl.key)
	}
	nl.items = append(nl.items, value)
}

func (nl *NodeList) RemoveAt(i int) any {
	v := nl.items[i]
	if child, ok := v.(*Node); ok {
		nl.parent.unbindChild(child)
	}
	nl.items = append(nl.items[:i], nl.items[i+1:]...)
	return v
}

func (nl *NodeList) Clear() {
	for _, v := range nl.items {
		if child, ok := v.(*Node); ok {
			nl.parent.unbindChild(child)
		}
	}
	nl.items = nil
}

// Extend appends a batch of values, binding any Node elements.
func (nl *NodeList) Extend(values []any) {
	for _, v := range values {
		nl.Append(v)
	}
}

func (nl *NodeList) IndexOf(target *Node) int {
	for i, v := range nl.items {
		if child, ok := v.(*Node); ok && child == target {
			return i
		}
	}
	return -1
}
