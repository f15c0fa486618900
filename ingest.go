package plmxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/jacoelho/plmxml/errors"
	"github.com/jacoelho/plmxml/internal/ref"
	"github.com/jacoelho/plmxml/internal/state"
)

// Element and attribute vocabulary of the supported PLMXML subset.
const (
	elemRoot            = "PLMXML"
	elemHeader          = "Header"
	elemRevisionRule    = "RevisionRule"
	elemSite            = "Site"
	elemProductView     = "ProductView"
	elemOccurrence      = "Occurrence"
	elemProductRevision = "ProductRevision"
	elemProduct         = "Product"
	elemDataSet         = "DataSet"
	elemExternalFile    = "ExternalFile"
	elemForm            = "Form"
	elemAttachment      = "AssociatedAttachment"
	elemAssocDataSet    = "AssociatedDataSet"
	elemApplicationRef  = "ApplicationRef"
	elemUserData        = "UserData"
	elemUserValue       = "UserValue"
)

// Reserved UserValue titles extracted into dedicated fields.
const (
	titleSequenceNumber = "SequenceNumber"
	titleQuantity       = "Quantity"
	titleObjectString   = "object_string"
	titleLastModDate    = "last_mod_date"
)

// userDataAttributesInContext marks a UserData block whose values belong to
// the enclosing occurrence rather than the instanced revision.
const userDataAttributesInContext = "AttributesInContext"

type scopeKind uint8

const (
	scopeOther scopeKind = iota
	scopeProductView
	scopeOccurrence
	scopeRevision
	scopeProduct
	scopeDataSet
	scopeExternalFile
	scopeForm
	scopeSite
	scopeUserData
)

// scope is one open element on the parse stack. At most one of the entity
// pointers is set, matching kind.
type scope struct {
	kind       scopeKind
	view       *ProductView
	occurrence *Occurrence
	revision   *ProductRevision
	product    *Product
	dataset    *DataSet
	file       *ExternalFile
	form       *Form
	site       *Site

	// occurrenceContext is set on scopeUserData when the block carries
	// occurrence-scoped contextual attributes.
	occurrenceContext bool
}

// session holds the per-document ingestion state. A fresh session is created
// for every parse, so no state can leak across documents.
type session struct {
	cfg    parseConfig
	result *Result
	scopes state.Stack[scope]
}

func newSession(cfg parseConfig) *session {
	return &session{
		cfg:    cfg,
		result: newResult(),
		scopes: state.NewStack[scope](16),
	}
}

// run consumes the whole document. Any XML error is fatal: the caller must
// discard the session's partial result.
func (s *session) run(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("xml read: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			s.startElement(t)
		case xml.EndElement:
			s.endElement()
		}
	}
	return nil
}

// attrs gives name-keyed access to a start element's attribute list.
// Namespace prefixes are ignored; matching is by local name only.
type attrs []xml.Attr

func (a attrs) get(name string) string {
	for _, attr := range a {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (s *session) startElement(el xml.StartElement) {
	a := attrs(el.Attr)
	sc := scope{kind: scopeOther}

	switch el.Name.Local {
	case elemRoot:
		s.result.Header.SchemaVersion = a.get("schemaVersion")
		s.result.Header.Author = a.get("author")
		s.result.Header.Date = a.get("date")
		s.result.Header.Time = a.get("time")

	case elemHeader:
		s.result.Header.TransferContext = a.get("transferContext")

	case elemRevisionRule:
		rule := &RevisionRule{
			ID:   s.identify(a, elemRevisionRule),
			Name: a.get("name"),
		}
		putEntity(s, s.result.RevisionRules, rule.ID, elemRevisionRule, rule)

	case elemSite:
		site := &Site{
			ID:     s.identify(a, elemSite),
			Name:   a.get("name"),
			SiteID: a.get("siteId"),
		}
		putEntity(s, s.result.Sites, site.ID, elemSite, site)
		sc = scope{kind: scopeSite, site: site}

	case elemProductView:
		view := &ProductView{
			ID:                   s.identify(a, elemProductView),
			RuleRefs:             ref.SplitList(a.get("ruleRefs")),
			PrimaryOccurrenceRef: ref.Strip(a.get("primaryOccurrenceRef")),
			RootRefs:             ref.SplitList(a.get("rootRefs")),
		}
		sc = scope{kind: scopeProductView, view: view}

	case elemOccurrence:
		occurrence := &Occurrence{
			ID:             s.identify(a, elemOccurrence),
			InstancedRef:   ref.Strip(a.get("instancedRef")),
			OccurrenceRefs: ref.SplitList(a.get("occurrenceRefs")),
			AttachmentRefs: ref.SplitList(a.get("associatedAttachmentRefs")),
			Attributes:     make(map[string]string),
		}
		putEntity(s, s.result.Occurrences, occurrence.ID, elemOccurrence, occurrence)
		sc = scope{kind: scopeOccurrence, occurrence: occurrence}

	case elemProductRevision:
		revision := &ProductRevision{
			ID:         s.identify(a, elemProductRevision),
			Name:       a.get("name"),
			SubType:    a.get("subType"),
			Revision:   a.get("revision"),
			MasterRef:  ref.Strip(a.get("masterRef")),
			Attributes: make(map[string]string),
		}
		putEntity(s, s.result.ProductRevisions, revision.ID, elemProductRevision, revision)
		sc = scope{kind: scopeRevision, revision: revision}

	case elemProduct:
		product := &Product{
			ID:        s.identify(a, elemProduct),
			ProductID: a.get("productId"),
			Name:      a.get("name"),
			SubType:   a.get("subType"),
		}
		putEntity(s, s.result.Products, product.ID, elemProduct, product)
		sc = scope{kind: scopeProduct, product: product}

	case elemDataSet:
		dataset := &DataSet{
			ID:         s.identify(a, elemDataSet),
			Name:       a.get("name"),
			Type:       a.get("type"),
			Version:    a.get("version"),
			MemberRefs: ref.SplitList(a.get("memberRefs")),
		}
		putEntity(s, s.result.DataSets, dataset.ID, elemDataSet, dataset)
		sc = scope{kind: scopeDataSet, dataset: dataset}

	case elemExternalFile:
		file := &ExternalFile{
			ID:          s.identify(a, elemExternalFile),
			LocationRef: a.get("locationRef"),
			Format:      a.get("format"),
		}
		file.Path = s.resolvePath(file.LocationRef)
		putEntity(s, s.result.ExternalFiles, file.ID, elemExternalFile, file)
		sc = scope{kind: scopeExternalFile, file: file}

	case elemForm:
		form := &Form{
			ID:         s.identify(a, elemForm),
			Name:       a.get("name"),
			SubType:    a.get("subType"),
			SubClass:   a.get("subClass"),
			Attributes: make(map[string]string),
		}
		putEntity(s, s.result.Forms, form.ID, elemForm, form)
		sc = scope{kind: scopeForm, form: form}

	case elemAttachment:
		attachment := &AssociatedAttachment{
			ID:            s.identify(a, elemAttachment),
			AttachmentRef: ref.Strip(a.get("attachmentRef")),
			Role:          a.get("role"),
		}
		putEntity(s, s.result.Attachments, attachment.ID, elemAttachment, attachment)

	case elemAssocDataSet:
		if revision := s.openRevision(); revision != nil {
			revision.DataSetRefs = append(revision.DataSetRefs, ref.Strip(a.get("dataSetRef")))
		}

	case elemApplicationRef:
		uid := a.get("version")
		if uid == "" {
			uid = a.get("label")
		}
		s.attachExternalUID(uid)

	case elemUserData:
		sc = scope{
			kind:              scopeUserData,
			occurrenceContext: a.get("type") == userDataAttributesInContext,
		}

	case elemUserValue:
		s.userValue(a.get("title"), a.get("value"))
	}

	s.scopes.Push(sc)
}

func (s *session) endElement() {
	sc, ok := s.scopes.Pop()
	if !ok {
		return
	}
	// Product views are surfaced in document order once complete.
	if sc.kind == scopeProductView && sc.view != nil {
		s.result.ProductViews = append(s.result.ProductViews, sc.view)
	}
}

// identify extracts the id attribute, substituting a synthetic unique id when
// it is absent so that distinct entities can never collide on an empty key.
func (s *session) identify(a attrs, element string) string {
	id := a.get("id")
	if id != "" {
		return id
	}
	if s.cfg.syntheticIDs {
		id = uuid.NewString()
	}
	s.diag(errors.ErrMissingID, id, "%s element has no id attribute", element)
	return id
}

// putEntity inserts a record into its table, keeping the first record on a
// key collision.
func putEntity[T any](s *session, table map[string]*T, id, element string, value *T) {
	if _, exists := table[id]; exists {
		s.diag(errors.ErrDuplicateID, id, "duplicate %s id %q", element, id)
		return
	}
	table[id] = value
}

// userValue routes one title/value pair to the nearest enclosing open entity.
// Occurrence routing additionally requires the enclosing UserData block to be
// marked occurrence-scoped.
func (s *session) userValue(title, value string) {
	occurrenceContext := false
	items := s.scopes.Items()
	for i := len(items) - 1; i >= 0; i-- {
		switch sc := items[i]; sc.kind {
		case scopeUserData:
			if sc.occurrenceContext {
				occurrenceContext = true
			}
		case scopeOccurrence:
			if occurrenceContext {
				switch title {
				case titleSequenceNumber:
					sc.occurrence.SequenceNumber = value
				case titleQuantity:
					sc.occurrence.Quantity = value
				default:
					sc.occurrence.Attributes[title] = value
				}
			}
			return
		case scopeRevision:
			switch title {
			case titleObjectString:
				sc.revision.ObjectString = value
			case titleLastModDate:
				sc.revision.LastModDate = value
			default:
				sc.revision.Attributes[title] = value
			}
			return
		case scopeForm:
			sc.form.Attributes[title] = value
			return
		case scopeProductView, scopeProduct, scopeDataSet, scopeExternalFile, scopeSite:
			return
		}
	}
}

// attachExternalUID records an external-system identifier on one open entity,
// preferring revision, then product, then dataset, then form.
func (s *session) attachExternalUID(uid string) {
	if uid == "" {
		return
	}
	var product *Product
	var dataset *DataSet
	var form *Form
	for _, sc := range s.scopes.Items() {
		switch sc.kind {
		case scopeRevision:
			sc.revision.ExternalUID = uid
			return
		case scopeProduct:
			product = sc.product
		case scopeDataSet:
			dataset = sc.dataset
		case scopeForm:
			form = sc.form
		}
	}
	switch {
	case product != nil:
		product.ExternalUID = uid
	case dataset != nil:
		dataset.ExternalUID = uid
	case form != nil:
		form.ExternalUID = uid
	}
}

func (s *session) openRevision() *ProductRevision {
	items := s.scopes.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].kind == scopeRevision {
			return items[i].revision
		}
	}
	return nil
}

// resolvePath resolves a relative external-file location against the
// configured base directory. Locations use forward slashes per the PLMXML
// convention, so resolution stays in slash path space.
func (s *session) resolvePath(location string) string {
	if location == "" || s.cfg.baseDir == "" || path.IsAbs(location) {
		return location
	}
	return path.Join(s.cfg.baseDir, location)
}

func (s *session) diag(code errors.ErrorCode, at, format string, args ...any) {
	s.result.Diagnostics = append(s.result.Diagnostics, errors.NewDiagnosticf(code, at, format, args...))
}
