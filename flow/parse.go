package flow

import (
	"fmt"
	"strconv"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/Crozal/openml-go/internal/xmlx"
)

// ErrMalformedDocument indicates the flow document violates the schema:
// a required element is missing, duplicated, or not parseable.
var ErrMalformedDocument = xmlx.ErrMalformedDocument

// uploadDateLayout is the timestamp format the OpenML server emits.
const uploadDateLayout = "2006-01-02 15:04:05"

// Parse builds a Flow from the given <oml:flow> element, descending
// recursively into embedded <oml:component> sub-flows. Optional elements
// absent from the document stay nil; a missing required element aborts the
// whole parse, mid-recursion included.
func Parse(n *xmlquery.Node) (*Flow, error) {
	f := &Flow{Components: []Component{}}

	idText, err := xmlx.Text(n, "oml:id")
	if err != nil {
		return nil, err
	}
	if f.ID, err = strconv.ParseInt(idText, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: flow id %q is not numeric", ErrMalformedDocument, idText)
	}

	if f.Name, err = xmlx.Text(n, "oml:name"); err != nil {
		return nil, err
	}
	if f.Version, err = xmlx.Text(n, "oml:version"); err != nil {
		return nil, err
	}
	if f.Description, err = xmlx.Text(n, "oml:description"); err != nil {
		return nil, err
	}

	dateText, err := xmlx.Text(n, "oml:upload_date")
	if err != nil {
		return nil, err
	}
	if f.UploadDate, err = time.Parse(uploadDateLayout, dateText); err != nil {
		return nil, fmt.Errorf("%w: upload_date %q: %v", ErrMalformedDocument, dateText, err)
	}

	uploader, err := xmlx.OptText(n, "oml:uploader")
	if err != nil {
		return nil, err
	}
	if uploader != nil {
		id, err := strconv.ParseInt(*uploader, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: uploader %q is not numeric", ErrMalformedDocument, *uploader)
		}
		f.Uploader = &id
	}

	optional := []struct {
		path string
		dst  **string
	}{
		{"oml:external_version", &f.ExternalVersion},
		{"oml:licence", &f.Licence},
		{"oml:language", &f.Language},
		{"oml:full_description", &f.FullDescription},
		{"oml:installation_notes", &f.InstallationNotes},
		{"oml:dependencies", &f.Dependencies},
		{"oml:implements", &f.Implements},
		{"oml:source_url", &f.SourceURL},
		{"oml:source_format", &f.SourceFormat},
		{"oml:source_md5", &f.SourceMD5},
		{"oml:binary_url", &f.BinaryURL},
		{"oml:binary_format", &f.BinaryFormat},
		{"oml:binary_md5", &f.BinaryMD5},
	}
	for _, o := range optional {
		if *o.dst, err = xmlx.OptText(n, o.path); err != nil {
			return nil, err
		}
	}

	if f.Creators, err = xmlx.Texts(n, "oml:creator"); err != nil {
		return nil, err
	}
	if f.Contributors, err = xmlx.Texts(n, "oml:contributor"); err != nil {
		return nil, err
	}
	if f.Tags, err = xmlx.Texts(n, "oml:tag"); err != nil {
		return nil, err
	}

	if f.Parameters, err = parseParameters(n); err != nil {
		return nil, err
	}
	if f.References, err = parseReferences(n); err != nil {
		return nil, err
	}
	if f.Qualities, err = parseQualities(n); err != nil {
		return nil, err
	}

	components, err := xmlx.Nodes(n, "oml:component")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		identifier, err := xmlx.Text(c, "oml:identifier")
		if err != nil {
			return nil, err
		}
		if _, dup := seen[identifier]; dup {
			return nil, fmt.Errorf("%w: duplicate component identifier %q", ErrMalformedDocument, identifier)
		}
		seen[identifier] = struct{}{}

		subNodes, err := xmlx.Nodes(c, "oml:flow")
		if err != nil {
			return nil, err
		}
		if len(subNodes) != 1 {
			return nil, fmt.Errorf("%w: component %q: expected exactly one oml:flow node, found %d",
				ErrMalformedDocument, identifier, len(subNodes))
		}

		// The sub-flow node is parsed as an independent subtree; relative
		// XPaths resolve against it, not the outer document root.
		sub, err := Parse(subNodes[0])
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", identifier, err)
		}
		f.Components = append(f.Components, Component{Identifier: identifier, Flow: sub})
	}

	return f, nil
}

// parseParameters builds one Parameter per <oml:parameter> node. Name is
// required; the remaining fields are read per node, so a document that
// provides a data_type for only some parameters still yields one record
// per parameter, with nil at the patchy positions.
func parseParameters(n *xmlquery.Node) ([]Parameter, error) {
	nodes, err := xmlx.Nodes(n, "oml:parameter")
	if err != nil {
		return nil, err
	}
	var params []Parameter
	for _, node := range nodes {
		var p Parameter
		if p.Name, err = xmlx.Text(node, "oml:name"); err != nil {
			return nil, err
		}
		if p.DataType, err = xmlx.OptText(node, "oml:data_type"); err != nil {
			return nil, err
		}
		if p.DefaultValue, err = xmlx.OptText(node, "oml:default_value"); err != nil {
			return nil, err
		}
		if p.Description, err = xmlx.OptText(node, "oml:description"); err != nil {
			return nil, err
		}
		if p.RecommendedRange, err = xmlx.OptText(node, "oml:recommendedRange"); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func parseReferences(n *xmlquery.Node) ([]Reference, error) {
	nodes, err := xmlx.Nodes(n, "oml:bibliographical_reference")
	if err != nil {
		return nil, err
	}
	var refs []Reference
	for _, node := range nodes {
		var r Reference
		if r.Citation, err = xmlx.Text(node, "oml:citation"); err != nil {
			return nil, err
		}
		if r.URL, err = xmlx.Text(node, "oml:url"); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}

func parseQualities(n *xmlquery.Node) ([]Quality, error) {
	nodes, err := xmlx.Nodes(n, "oml:quality")
	if err != nil {
		return nil, err
	}
	var qualities []Quality
	for _, node := range nodes {
		var q Quality
		if q.Name, err = xmlx.Text(node, "oml:name"); err != nil {
			return nil, err
		}
		if q.Value, err = xmlx.Text(node, "oml:value"); err != nil {
			return nil, err
		}
		qualities = append(qualities, q)
	}
	return qualities, nil
}
