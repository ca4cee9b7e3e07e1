// Package io reads and writes attributed graphs in the file formats accepted
// by the upload endpoint.
//
// # Overview
//
// Two container formats are supported, selected by file extension:
//
//   - .json: either the force-graph shape {"nodes": [...], "links": [...]}
//     or the graphology export shape {"nodes": [...], "edges": [...]}
//   - .gexf: GEXF 1.x XML as written by Gephi and NetworkX
//
// Whatever the input, the result is a [graph.Graph] whose nodes and links
// carry flattened attributes. [Load] additionally assigns unique edge IDs,
// validates the structure and resolves edge curvature, so the returned graph
// is ready for encoding.
//
// # JSON: force-graph shape
//
//	{
//	  "nodes": [{"id": "acme", "name": "Acme Corp", "division": "Finance"}],
//	  "links": [{"source": "acme", "target": "globex", "color": "supplier"}]
//	}
//
// Every key other than id/source/target is an attribute. Link endpoints may
// also be node objects carrying an "id", as produced by rendering engines
// that resolve endpoints in place.
//
// # JSON: graphology shape
//
//	{
//	  "nodes": [{"key": "acme", "attributes": {"legal_name": "Acme Corp"}}],
//	  "edges": [{"key": "e1", "source": "acme", "target": "globex", "attributes": {"color": "red"}}]
//	}
//
// Node keys become IDs and attributes are flattened. Nodes get a "name"
// attribute from legal_name, then trade_name, then the key, unless the
// attributes already carry one. Edge keys become edge IDs; extra top-level
// edge fields (such as "undirected") are kept as attributes.
//
// # GEXF
//
// A node label becomes the "name" attribute and an edge label the "label"
// attribute. Declared attributes (attvalues) are converted according to
// their declared type; edge weights become the "weight" attribute. Elements
// are matched by local name, so any GEXF namespace version (or none) is
// accepted. Hierarchical (nested) nodes are not supported.
//
// # Errors
//
// Failures carry codes from pkg/errors: UNSUPPORTED_FORMAT for unknown
// extensions, INVALID_UPLOAD for JSON without a recognized shape,
// PARSE_ERROR for malformed content and INVALID_GRAPH for structural
// problems found by validation.
package io
