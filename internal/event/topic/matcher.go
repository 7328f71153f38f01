package topic

import "sync"

// Matcher provides efficient topic pattern matching using a trie data structure.
// It is safe for concurrent use.
type Matcher struct {
	mu   sync.RWMutex
	root *trieNode
}

// trieNode represents a node in the pattern trie.
type trieNode struct {
	children map[string]*trieNode
	patterns []Topic // Patterns that terminate at this node
}

// newTrieNode creates a new trie node.
func newTrieNode() *trieNode {
	return &trieNode{
		children: make(map[string]*trieNode),
	}
}

// isEmpty returns true if the node has no children and no patterns.
func (n *trieNode) isEmpty() bool {
	return len(n.children) == 0 && len(n.patterns) == 0
}

// NewMatcher creates a new topic matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		root: newTrieNode(),
	}
}

// Add adds a pattern to the matcher.
// The pattern may contain wildcards (* and **).
// Returns true if the pattern was added, false if it already existed.
func (m *Matcher) Add(pattern Topic) bool {
	if pattern == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	segments := pattern.Segments()
	node := m.root

	for _, seg := range segments {
		if node.children[seg] == nil {
			node.children[seg] = newTrieNode()
		}
		node = node.children[seg]
	}

	for _, p := range node.patterns {
		if p == pattern {
			return false
		}
	}
	node.patterns = append(node.patterns, pattern)
	return true
}

// pathEntry tracks a node and the key used to reach it during traversal.
type pathEntry struct {
	node *trieNode
	key  string
}

// Remove removes a pattern from the matcher and prunes empty nodes.
// Returns true if the pattern was removed, false if it didn't exist.
func (m *Matcher) Remove(pattern Topic) bool {
	if pattern == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	segments := pattern.Segments()

	path := make([]pathEntry, 0, len(segments)+1)
	path = append(path, pathEntry{node: m.root})

	node := m.root
	for _, seg := range segments {
		child := node.children[seg]
		if child == nil {
			return false
		}
		path = append(path, pathEntry{node: child, key: seg})
		node = child
	}

	found := false
	for i, p := range node.patterns {
		if p == pattern {
			node.patterns = append(node.patterns[:i], node.patterns[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	// Prune empty nodes from leaf back to root
	for i := len(path) - 1; i > 0; i-- {
		if !path[i].node.isEmpty() {
			break
		}
		delete(path[i-1].node.children, path[i].key)
	}

	return true
}

// Has returns true if the exact pattern exists in the matcher.
func (m *Matcher) Has(pattern Topic) bool {
	if pattern == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	segments := pattern.Segments()
	node := m.root

	for _, seg := range segments {
		if node.children[seg] == nil {
			return false
		}
		node = node.children[seg]
	}

	for _, p := range node.patterns {
		if p == pattern {
			return true
		}
	}
	return false
}

// matchState tracks the state during recursive matching to avoid duplicates.
type matchState struct {
	seen    map[Topic]struct{}
	matches []Topic
	visited map[visitKey]struct{} // memoization to avoid revisiting (node, depth) pairs
}

// visitKey is a composite key for memoization of (node pointer, depth) pairs.
type visitKey struct {
	node  *trieNode
	depth int
}

// Match returns all patterns that match the given concrete topic.
// The topic should not contain wildcards - it represents an actual event topic.
// The returned patterns are unique (no duplicates).
func (m *Matcher) Match(eventTopic Topic) []Topic {
	if eventTopic == "" {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	state := &matchState{
		seen:    make(map[Topic]struct{}),
		visited: make(map[visitKey]struct{}),
	}
	segments := eventTopic.Segments()

	m.matchRecursive(m.root, segments, 0, state)

	return state.matches
}

// matchRecursive performs recursive pattern matching through the trie.
// Uses memoization via state.visited to avoid exponential blowup with ** wildcards.
func (m *Matcher) matchRecursive(node *trieNode, segments []string, depth int, state *matchState) {
	if node == nil {
		return
	}

	key := visitKey{node: node, depth: depth}
	if _, seen := state.visited[key]; seen {
		return
	}
	state.visited[key] = struct{}{}

	// If we've consumed all segments, collect patterns at this node
	if depth == len(segments) {
		m.addPatterns(node.patterns, state)

		// ** at the end can match zero segments
		if child := node.children[WildcardMulti]; child != nil {
			m.matchRecursive(child, segments, depth, state)
		}
		return
	}

	segment := segments[depth]

	// Exact match - continue down the tree
	if child := node.children[segment]; child != nil {
		m.matchRecursive(child, segments, depth+1, state)
	}

	// Single wildcard (*) matches any one segment
	if child := node.children[WildcardSingle]; child != nil {
		m.matchRecursive(child, segments, depth+1, state)
	}

	// Multi wildcard (**) matches zero or more segments
	if child := node.children[WildcardMulti]; child != nil {
		for i := depth; i <= len(segments); i++ {
			m.matchRecursive(child, segments, i, state)
		}
	}
}

// addPatterns adds patterns to the match state, avoiding duplicates.
func (m *Matcher) addPatterns(patterns []Topic, state *matchState) {
	for _, p := range patterns {
		if _, seen := state.seen[p]; !seen {
			state.seen[p] = struct{}{}
			state.matches = append(state.matches, p)
		}
	}
}

// MatchExact returns true if there is an exact pattern match (no wildcard expansion).
func (m *Matcher) MatchExact(topic Topic) bool {
	if topic == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	segments := topic.Segments()
	node := m.root

	for _, seg := range segments {
		child := node.children[seg]
		if child == nil {
			return false
		}
		node = child
	}

	return len(node.patterns) > 0
}

// Patterns returns all patterns in the matcher.
func (m *Matcher) Patterns() []Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var patterns []Topic
	m.collectPatterns(m.root, &patterns)
	return patterns
}

// collectPatterns recursively collects all patterns from the trie.
func (m *Matcher) collectPatterns(node *trieNode, patterns *[]Topic) {
	if node == nil {
		return
	}

	*patterns = append(*patterns, node.patterns...)

	for _, child := range node.children {
		m.collectPatterns(child, patterns)
	}
}

// Count returns the number of patterns in the matcher.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	m.countPatterns(m.root, &count)
	return count
}

// countPatterns recursively counts patterns in the trie.
func (m *Matcher) countPatterns(node *trieNode, count *int) {
	if node == nil {
		return
	}

	*count += len(node.patterns)

	for _, child := range node.children {
		m.countPatterns(child, count)
	}
}

// Clear removes all patterns from the matcher.
func (m *Matcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.root = newTrieNode()
}
