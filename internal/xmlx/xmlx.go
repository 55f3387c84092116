// Package xmlx extracts scalar values from xmlquery documents with
// cardinality enforcement: required (exactly one), optional (zero or one)
// and repeated (zero or more) node selections.
package xmlx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ErrMalformedDocument indicates a required selection matched zero nodes,
// or a single-valued selection matched more than one.
var ErrMalformedDocument = errors.New("malformed document")

// Text returns the text content of exactly one node selected by path,
// relative to n. Zero or multiple matches are a malformed document.
func Text(n *xmlquery.Node, path string) (string, error) {
	nodes, err := xmlquery.QueryAll(n, path)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", path, err)
	}
	if len(nodes) != 1 {
		return "", fmt.Errorf("%w: expected exactly one %q node, found %d", ErrMalformedDocument, path, len(nodes))
	}
	return strings.TrimSpace(nodes[0].InnerText()), nil
}

// OptText returns the text content of at most one node selected by path,
// or nil when the node is absent. Multiple matches are a malformed document.
func OptText(n *xmlquery.Node, path string) (*string, error) {
	nodes, err := xmlquery.QueryAll(n, path)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", path, err)
	}
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		s := strings.TrimSpace(nodes[0].InnerText())
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: expected at most one %q node, found %d", ErrMalformedDocument, path, len(nodes))
	}
}

// Texts returns the text content of every node selected by path, in
// document order. No matches yields a nil slice.
func Texts(n *xmlquery.Node, path string) ([]string, error) {
	nodes, err := xmlquery.QueryAll(n, path)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", path, err)
	}
	var out []string
	for _, node := range nodes {
		out = append(out, strings.TrimSpace(node.InnerText()))
	}
	return out, nil
}

// Nodes returns every node selected by path, in document order.
func Nodes(n *xmlquery.Node, path string) ([]*xmlquery.Node, error) {
	nodes, err := xmlquery.QueryAll(n, path)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", path, err)
	}
	return nodes, nil
}
