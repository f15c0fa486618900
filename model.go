package plmxml

import "github.com/jacoelho/plmxml/errors"

// Header carries document-level metadata from the PLMXML root element and
// the Header element.
type Header struct {
	SchemaVersion   string
	Author          string
	Date            string
	Time            string
	TransferContext string
}

// ProductView selects a configured product structure. Roots is populated by
// the linker after ingestion; the reference fields are kept as parsed.
type ProductView struct {
	ID                   string
	RuleRefs             []string
	PrimaryOccurrenceRef string
	RootRefs             []string
	Roots                []*OccurrenceNode
}

// Occurrence is one positioned instance of a product revision, as parsed.
// Reserved user values are extracted into SequenceNumber and Quantity; every
// other occurrence-scoped user value lands in Attributes.
type Occurrence struct {
	ID             string
	InstancedRef   string
	OccurrenceRefs []string
	AttachmentRefs []string
	SequenceNumber string
	Quantity       string
	Attributes     map[string]string
}

// ProductRevision is a versioned product record.
type ProductRevision struct {
	ID           string
	Name         string
	SubType      string
	Revision     string
	ObjectString string
	LastModDate  string
	MasterRef    string
	DataSetRefs  []string
	Attributes   map[string]string
	ExternalUID  string
}

// Product is the unversioned master of a revision. ProductID is the business
// key shown to users, distinct from the document-local ID.
type Product struct {
	ID          string
	ProductID   string
	Name        string
	SubType     string
	ExternalUID string
}

// DataSet is a named group of attached digital artifacts.
type DataSet struct {
	ID          string
	Name        string
	Type        string
	Version     string
	MemberRefs  []string
	ExternalUID string
}

// ExternalFile is a single file referenced by a dataset. Path is LocationRef
// resolved against the configured base directory.
type ExternalFile struct {
	ID          string
	LocationRef string
	Path        string
	Format      string
}

// RevisionRule names the configuration rule the export was resolved with.
type RevisionRule struct {
	ID   string
	Name string
}

// Site identifies the exporting site. SiteID is matched against external
// system URL mappings by the presentation layer.
type Site struct {
	ID     string
	Name   string
	SiteID string
}

// Form is a record of free-form business attributes attached via an
// attachment link.
type Form struct {
	ID          string
	Name        string
	SubType     string
	SubClass    string
	Attributes  map[string]string
	ExternalUID string
}

// AssociatedAttachment links an occurrence to a form with a role.
type AssociatedAttachment struct {
	ID            string
	AttachmentRef string
	Role          string
}

// OccurrenceNode is one resolved node of a linked BOM tree. The linker joins
// each occurrence to its revision and master product and copies the display
// fields here; the flat tables are never mutated.
type OccurrenceNode struct {
	ID             string
	DisplayName    string
	Name           string
	SubType        string
	Revision       string
	LastModDate    string
	ProductID      string
	InstancedRef   string
	SequenceNumber string
	Quantity       string
	DataSetRefs    []string
	AttachmentRefs []string
	Attributes     map[string]string
	Children       []*OccurrenceNode
}

// Result holds everything produced by one parse: the linked product view
// trees, the flat per-type lookup tables, and the non-fatal diagnostics
// collected along the way.
type Result struct {
	Header           Header
	ProductViews     []*ProductView
	Occurrences      map[string]*Occurrence
	ProductRevisions map[string]*ProductRevision
	Products         map[string]*Product
	DataSets         map[string]*DataSet
	ExternalFiles    map[string]*ExternalFile
	RevisionRules    map[string]*RevisionRule
	Sites            map[string]*Site
	Forms            map[string]*Form
	Attachments      map[string]*AssociatedAttachment
	Diagnostics      errors.DiagnosticList
}

func newResult() *Result {
	return &Result{
		Occurrences:      make(map[string]*Occurrence),
		ProductRevisions: make(map[string]*ProductRevision),
		Products:         make(map[string]*Product),
		DataSets:         make(map[string]*DataSet),
		ExternalFiles:    make(map[string]*ExternalFile),
		RevisionRules:    make(map[string]*RevisionRule),
		Sites:            make(map[string]*Site),
		Forms:            make(map[string]*Form),
		Attachments:      make(map[string]*AssociatedAttachment),
	}
}
