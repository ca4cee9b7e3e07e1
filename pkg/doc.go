// Package pkg provides the core libraries for Linkscope attributed-network
// exploration.
//
// # Overview
//
// Linkscope turns attributed graphs into interactive views in which node
// and edge attributes drive color, size and labels, and user interaction
// (hover, click, filter chips, search) decides what stands out. The pkg
// directory is organized into four areas:
//
//  1. Domain logic: [graph], [encode], [highlight]
//  2. Input and output: [io], [render]
//  3. Infrastructure: [cache], [storage], [session], [config], [observability]
//  4. Orchestration and transport: [pipeline], [api], [httputil]
//
// # Architecture
//
// The data flow through Linkscope:
//
//	Upload (JSON or GEXF)
//	         ↓
//	    [io] package (parse, assign edge IDs, resolve curvature)
//	         ↓
//	    [encode] package (attribute scales, palettes, label sampling)
//	         ↓
//	    [highlight] package (interaction state machine)
//	         ↓
//	    [encode.Frame] (per-element color, size and label visibility)
//	         ↓
//	    Snapshot JSON, DOT, SVG, PNG or PDF
//
// # Quick Start
//
// Encode a graph and evaluate one interaction:
//
//	import (
//	    "github.com/matzehuels/linkscope/pkg/encode"
//	    "github.com/matzehuels/linkscope/pkg/highlight"
//	    "github.com/matzehuels/linkscope/pkg/io"
//	)
//
//	// 1. Parse the upload
//	g, _ := io.ParseUpload("companies.json", data)
//
//	// 2. Build the encoder
//	enc, _ := encode.Build(g, encode.Suggest(g.Schema()))
//
//	// 3. Apply a click
//	state, effect := highlight.Transition(highlight.State{}, highlight.Click{Ref: highlight.Node("acme")}, enc.Index())
//
//	// 4. Read the visual properties
//	snap := enc.Frame(state).Snapshot()
//
// # Main Packages
//
// [graph] - Attributed multigraph with stable edge IDs, attribute schema
// discovery and an adjacency index.
//
// [encode] - Maps attributes onto visual channels. Subpackages hold the
// scales, palettes, curvature rules and label sampling.
//
// [highlight] - The pure interaction state machine: exactly one source
// (hover, selection, filter or search) drives the highlighted sets.
//
// [session] - Interaction sessions with dataset generations, upload guards
// and persisted records (memory, file or Redis).
//
// [pipeline] - Cached ingestion and snapshot rendering shared by the CLI
// and the API server.
//
// [api] - The HTTP API built on chi.
package pkg
