package plmxml

import "github.com/jacoelho/plmxml/errors"

// linker materializes the occurrence trees for every parsed product view.
// It reads the flat tables and allocates tree nodes only; the tables are
// frozen once ingestion completes.
type linker struct {
	result *Result
	onPath map[string]bool
}

func (r *Result) link() {
	l := &linker{
		result: r,
		onPath: make(map[string]bool),
	}
	for _, view := range r.ProductViews {
		l.linkView(view)
	}
}

// linkView resolves the view's root id set: the explicit root reference list
// when present, else the primary occurrence reference, else nothing.
func (l *linker) linkView(view *ProductView) {
	roots := view.RootRefs
	if len(roots) == 0 && view.PrimaryOccurrenceRef != "" {
		roots = []string{view.PrimaryOccurrenceRef}
	}
	for _, rootID := range roots {
		occurrence, ok := l.result.Occurrences[rootID]
		if !ok {
			l.diag(errors.ErrUnresolvedRef, view.ID, "product view root occurrence %q not found", rootID)
			continue
		}
		view.Roots = append(view.Roots, l.build(occurrence))
	}
}

func (l *linker) build(occurrence *Occurrence) *OccurrenceNode {
	l.onPath[occurrence.ID] = true
	defer delete(l.onPath, occurrence.ID)

	node := &OccurrenceNode{
		ID:             occurrence.ID,
		InstancedRef:   occurrence.InstancedRef,
		SequenceNumber: occurrence.SequenceNumber,
		Quantity:       occurrence.Quantity,
		AttachmentRefs: occurrence.AttachmentRefs,
		Attributes:     occurrence.Attributes,
	}
	l.join(node, occurrence)

	for _, childID := range occurrence.OccurrenceRefs {
		if l.onPath[childID] {
			l.diag(errors.ErrOccurrenceCycle, occurrence.ID, "occurrence %q references ancestor %q", occurrence.ID, childID)
			continue
		}
		child, ok := l.result.Occurrences[childID]
		if !ok {
			l.diag(errors.ErrUnresolvedRef, occurrence.ID, "child occurrence %q not found", childID)
			continue
		}
		node.Children = append(node.Children, l.build(child))
	}
	return node
}

// join copies the display fields from the instanced revision and its master
// product onto the node. The display name falls back from the revision's
// object string to its name to the occurrence id.
func (l *linker) join(node *OccurrenceNode, occurrence *Occurrence) {
	defer func() {
		if node.DisplayName == "" {
			node.DisplayName = node.ID
		}
	}()

	if occurrence.InstancedRef == "" {
		return
	}
	revision, ok := l.result.ProductRevisions[occurrence.InstancedRef]
	if !ok {
		l.diag(errors.ErrUnresolvedRef, occurrence.ID, "instanced revision %q not found", occurrence.InstancedRef)
		return
	}

	node.Name = revision.Name
	node.SubType = revision.SubType
	node.Revision = revision.Revision
	node.LastModDate = revision.LastModDate
	node.DataSetRefs = append([]string(nil), revision.DataSetRefs...)
	node.DisplayName = revision.ObjectString
	if node.DisplayName == "" {
		node.DisplayName = revision.Name
	}

	for _, dataSetID := range node.DataSetRefs {
		if _, ok := l.result.DataSets[dataSetID]; !ok {
			l.diag(errors.ErrUnresolvedRef, occurrence.ID, "dataset %q not found", dataSetID)
		}
	}

	if revision.MasterRef == "" {
		return
	}
	product, ok := l.result.Products[revision.MasterRef]
	if !ok {
		l.diag(errors.ErrUnresolvedRef, revision.ID, "master product %q not found", revision.MasterRef)
		return
	}
	node.ProductID = product.ProductID
}

func (l *linker) diag(code errors.ErrorCode, at, format string, args ...any) {
	l.result.Diagnostics = append(l.result.Diagnostics, errors.NewDiagnosticf(code, at, format, args...))
}
