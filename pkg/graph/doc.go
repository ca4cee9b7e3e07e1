// Package graph provides the attributed graph model shared by every linkscope
// component.
//
// A [Graph] is a snapshot of entities ([Node]) and their relationships
// ([Edge]), each carrying an arbitrary attribute mapping (category, amount,
// color tag, ...). The package sits at the serialization boundary: the JSON
// form is the node-link shape consumed by force-directed rendering engines,
//
//	{
//	  "nodes": [{"id": "A", "division": "Finance", "revenue": 12.5}],
//	  "links": [{"source": "A", "target": "B", "color": "red"}]
//	}
//
// with attributes flattened next to the structural keys.
//
// # Edge Identity
//
// Multiple edges may connect the same ordered pair (parallel edges) or the
// reverse pair (anti-parallel edges). Each edge therefore carries a unique
// [Edge.ID]; [Graph.AssignEdgeIDs] synthesizes one where the input had none.
// [Edge.PairKey] still returns the "source___target" form for callers that
// want to group by ordered pair.
//
// # Lookups
//
// [Index] provides O(1) node/edge lookup and incident-edge lists. It is
// built once per graph load and is safe for concurrent readers.
//
// # Attributes
//
// Attribute values are untyped. [Number] and [Text] coerce them for numeric
// scaling and categorical coloring; values that cannot be coerced are treated
// as absent. [Graph.Schema] summarizes which keys exist and whether they are
// numeric, so visual configuration can be validated at load time.
package graph
