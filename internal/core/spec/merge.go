package spec

import (
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Override Merge
// =============================================================================

// mergeMappings applies an override mapping over a base mapping and returns a
// fresh mapping node. The merge law, applied key by key:
//
//   - explicit null   -> the key is removed from the result
//   - both sequences  -> base items followed by override items, no dedup
//   - both mappings   -> the override mapping replaces the base wholesale
//   - anything else   -> the override value wins
//
// Working at the node level keeps document order intact and makes explicit
// nulls distinguishable from absent keys.
func mergeMappings(base, override *yaml.Node) *yaml.Node {
	merged := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	overrideVals := mappingValues(override)

	// Base keys first, in base order.
	for i := 0; i+1 < len(base.Content); i += 2 {
		key := base.Content[i]
		val := base.Content[i+1]

		ov, present := overrideVals[key.Value]
		if !present {
			merged.Content = append(merged.Content, key, val)
			continue
		}
		if isNullNode(ov) {
			continue // explicit null removes the key
		}
		if val.Kind == yaml.SequenceNode && ov.Kind == yaml.SequenceNode {
			merged.Content = append(merged.Content, key, concatSequences(val, ov))
			continue
		}
		merged.Content = append(merged.Content, key, ov)
	}

	// Override-only keys next, in override order.
	baseKeys := mappingValues(base)
	for i := 0; i+1 < len(override.Content); i += 2 {
		key := override.Content[i]
		val := override.Content[i+1]
		if _, exists := baseKeys[key.Value]; exists {
			continue
		}
		if isNullNode(val) {
			continue
		}
		merged.Content = append(merged.Content, key, val)
	}

	return merged
}

// concatSequences returns a new sequence node holding the base items followed
// by the override items.
func concatSequences(base, override *yaml.Node) *yaml.Node {
	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	out.Content = append(out.Content, base.Content...)
	out.Content = append(out.Content, override.Content...)
	return out
}

// mappingValues indexes a mapping node's value nodes by key text.
func mappingValues(mapping *yaml.Node) map[string]*yaml.Node {
	vals := make(map[string]*yaml.Node)
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return vals
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		vals[mapping.Content[i].Value] = mapping.Content[i+1]
	}
	return vals
}

// mappingValue returns the value node for a key, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// withoutKey returns a copy of a mapping node with one key dropped.
func withoutKey(mapping *yaml.Node, key string) *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			continue
		}
		out.Content = append(out.Content, mapping.Content[i], mapping.Content[i+1])
	}
	return out
}

func isNullNode(n *yaml.Node) bool {
	return n != nil && n.ShortTag() == "!!null"
}
