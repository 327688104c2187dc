package a11y

// isLeaf reports whether a node has no meaningful children: either it has
// a role that is inherently leaf-like, it has no children at all, or every
// child is ignored, static text, or untyped.
func isLeaf(n *Node, byID map[string]*Node) bool {
	role := n.RoleString()
	if leafRoles[role] {
		return true
	}
	if len(n.ChildIDs) == 0 {
		return true
	}
	for _, id := range n.ChildIDs {
		child, ok := byID[id]
		if !ok {
			continue
		}
		cr := child.RoleString()
		if child.Ignored || textRoles[cr] || cr == "" || cr == "none" {
			continue
		}
		return false
	}
	return true
}

// interesting evaluates the fixed predicate from the spec's role/property
// rules. insideControl is true when some strict ancestor's role is a
// control role — in that case only direct control/landmark membership or
// the focusable property can make the node interesting.
func interesting(n *Node, byID map[string]*Node, insideControl bool) bool {
	if n.Ignored || n.RoleString() == "Ignored" {
		return false
	}

	role := n.RoleString()

	if landmarkRoles[role] || controlRoles[role] {
		return true
	}

	if n.BoolProperty("focusable") {
		return true
	}

	if insideControl {
		return false
	}

	if n.BoolProperty("editable") || n.BoolProperty("modal") {
		return true
	}

	if live := n.StringProperty("live"); live != "" && live != "off" {
		return true
	}

	if role == "heading" && n.NameString() != "" {
		return true
	}

	if isLeaf(n, byID) && (n.NameString() != "" || n.DescriptionString() != "") {
		return true
	}

	if role == "image" && n.NameString() != "" {
		return true
	}

	if textRoles[role] && n.NameString() != "" {
		return true
	}

	return false
}

// Filter computes the "interesting" subset of nodes, preserving the
// original node order and the ancestor chain of every interesting node so
// the result stays a connected tree, as pruned childIds. The first node
// (the tree root) is always kept, even when nothing below it is
// interesting.
func Filter(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[string]*Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].NodeID] = &nodes[i]
	}

	keep := make(map[string]bool, len(nodes))
	parent := make(map[string]string, len(nodes))

	root := &nodes[0]
	var dfs func(n *Node, insideControl bool)
	dfs = func(n *Node, insideControl bool) {
		if interesting(n, byID, insideControl) {
			markAncestors(n.NodeID, parent, keep)
		}
		childInsideControl := insideControl || controlRoles[n.RoleString()]
		for _, id := range n.ChildIDs {
			child, ok := byID[id]
			if !ok {
				continue
			}
			parent[id] = n.NodeID
			dfs(child, childInsideControl)
		}
	}
	dfs(root, false)
	keep[root.NodeID] = true

	result := make([]Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		if !keep[n.NodeID] {
			continue
		}
		pruned := make([]string, 0, len(n.ChildIDs))
		for _, id := range n.ChildIDs {
			if keep[id] {
				pruned = append(pruned, id)
			}
		}
		if len(pruned) == 0 {
			n.ChildIDs = nil
		} else {
			n.ChildIDs = pruned
		}
		result = append(result, n)
	}
	return result
}

// markAncestors flags id and every recorded ancestor of id as kept.
func markAncestors(id string, parent map[string]string, keep map[string]bool) {
	for id != "" && !keep[id] {
		keep[id] = true
		id = parent[id]
	}
}
