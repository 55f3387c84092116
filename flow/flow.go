// Package flow models OpenML flows and parses them from the service's XML
// representation. A flow describes a registered machine-learning algorithm
// or implementation; flows embed sub-flows as named components, so a parsed
// flow is the root of a tree.
package flow

import "time"

// Flow is a versioned description of an ML algorithm or implementation.
// Optional scalar fields are pointers: nil means the element was absent
// from the document, which is distinct from an empty value.
type Flow struct {
	ID              int64
	Uploader        *int64
	Name            string
	Version         string
	ExternalVersion *string
	Description     string
	UploadDate      time.Time

	Creators     []string
	Contributors []string
	Tags         []string

	Licence           *string
	Language          *string
	FullDescription   *string
	InstallationNotes *string
	Dependencies      *string
	Implements        *string

	// References, Parameters and Qualities are nil when the document has
	// no such nodes; a flow that cites nothing has no reference list.
	References []Reference
	Parameters []Parameter
	Qualities  []Quality

	SourceURL    *string
	SourceFormat *string
	SourceMD5    *string
	BinaryURL    *string
	BinaryFormat *string
	BinaryMD5    *string

	// SourcePath and BinaryPath point at a local artifact file attached
	// after retrieval. At most one of the two is set.
	SourcePath string
	BinaryPath string

	// Components holds the embedded sub-flows in document order. Always
	// non-nil; a flow without components has an empty slice.
	Components []Component
}

// Component is a named, embedded child flow.
type Component struct {
	Identifier string
	Flow       *Flow
}

// Component returns the sub-flow registered under identifier, or nil.
func (f *Flow) Component(identifier string) *Flow {
	for _, c := range f.Components {
		if c.Identifier == identifier {
			return c.Flow
		}
	}
	return nil
}

// Parameter is a configuration knob exposed by a flow. Every field except
// Name may be missing from the document.
type Parameter struct {
	Name             string
	DataType         *string
	DefaultValue     *string
	Description      *string
	RecommendedRange *string
}

// Reference is a bibliographic citation attached to a flow.
type Reference struct {
	Citation string
	URL      string
}

// Quality is a name/value metric recorded against a flow. Value is kept as
// the raw document text.
type Quality struct {
	Name  string
	Value string
}
