// Package topic provides hierarchical topic types, the closed topic catalog,
// and pattern matching for the dashboard event broker.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	glue.cell.1.weight
//	glue.cell.2.state
//	app.state
//	robot.trajectory.point
//
// # Closed Catalog
//
// Unlike an open bus, the set of valid topics is enumerated at process start
// via NewCatalog. Publishing or subscribing outside the catalog is an error;
// a typo must surface immediately rather than silently swallow events.
//
// # Wildcards
//
// Subscribe patterns may use wildcards:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	glue.cell.*.weight    matches every cell's weight topic
//	robot.trajectory.**   matches all trajectory topics
//	**                    matches everything in the catalog
//
// A pattern is only accepted if it matches at least one catalog member.
//
// # Pattern Matching
//
// The Matcher type provides efficient pattern matching using a trie.
//
//	m := topic.NewMatcher()
//	m.Add(topic.Topic("glue.cell.*.weight"))
//	m.Add(topic.CellWeight(1))
//
//	matches := m.Match(topic.CellWeight(1))
//	// matches contains both patterns
package topic
