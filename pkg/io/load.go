package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/linkscope/pkg/encode/curve"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
)

// Format identifies a graph file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatGEXF Format = "gexf"
)

// Extensions lists the accepted upload extensions.
var Extensions = []string{".json", ".gexf"}

// DetectFormat picks the format from the filename's extension.
func DetectFormat(filename string) (Format, error) {
	if err := errors.ValidateExtension(filename, Extensions...); err != nil {
		return "", err
	}
	return Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")), nil
}

// Parse decodes data in the given format without validating or preparing
// the result.
func Parse(data []byte, format Format) (*graph.Graph, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatGEXF:
		return parseGEXF(data)
	}
	return nil, errors.New(errors.ErrCodeUnsupportedFormat, "Unsupported file type")
}

// Prepare readies a freshly parsed graph for encoding: unique edge IDs are
// assigned, the structure is validated and curvature is resolved.
func Prepare(g *graph.Graph) error {
	g.AssignEdgeIDs()
	if err := g.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "Invalid graph: %v", err)
	}
	curve.Resolve(g.Links)
	return nil
}

// Load parses and prepares data in the given format.
func Load(data []byte, format Format) (*graph.Graph, error) {
	g, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := Prepare(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseUpload validates an uploaded file's name, selects the format from its
// extension and loads the content.
func ParseUpload(filename string, data []byte) (*graph.Graph, error) {
	if err := errors.ValidateUploadFilename(filename); err != nil {
		return nil, err
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	return Load(data, format)
}

// ReadFile loads a graph file from disk, selecting the format by extension.
func ReadFile(path string) (*graph.Graph, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Load(data, format)
}

// Write encodes g in the given format.
func Write(g *graph.Graph, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return graph.WriteGraph(g, w)
	case FormatGEXF:
		return WriteGEXF(g, w)
	}
	return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported export format %q", format)
}

// WriteFile writes g to path in the format implied by its extension.
func WriteFile(g *graph.Graph, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f, format)
}
