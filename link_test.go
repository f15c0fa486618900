package plmxml

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/plmxml/errors"
)

func TestLinkJoinsRevisionAndProduct(t *testing.T) {
	result := parseSample(t)

	view := result.ProductViews[0]
	if got := len(view.Roots); got != 1 {
		t.Fatalf("len(Roots) = %d, want 1", got)
	}

	root := view.Roots[0]
	if root.ID != "occ1" {
		t.Errorf("root.ID = %q, want %q", root.ID, "occ1")
	}
	if root.DisplayName != "8882/A;1-Assembly" {
		t.Errorf("DisplayName = %q, want revision object string", root.DisplayName)
	}
	if root.ProductID != "8882" {
		t.Errorf("ProductID = %q, want %q", root.ProductID, "8882")
	}
	if root.Revision != "A" {
		t.Errorf("Revision = %q, want %q", root.Revision, "A")
	}
	if root.LastModDate != "2024-03-13T09:00:00" {
		t.Errorf("LastModDate = %q, want %q", root.LastModDate, "2024-03-13T09:00:00")
	}
	if len(root.DataSetRefs) != 1 || root.DataSetRefs[0] != "ds1" {
		t.Errorf("DataSetRefs = %v, want [ds1]", root.DataSetRefs)
	}
	if root.Quantity != "4" || root.SequenceNumber != "10" {
		t.Errorf("Quantity/SequenceNumber = %q/%q, want 4/10", root.Quantity, root.SequenceNumber)
	}

	// Children follow the order of the parent's reference list.
	if got := len(root.Children); got != 2 {
		t.Fatalf("len(Children) = %d, want 2", got)
	}
	if root.Children[0].ID != "occ2" || root.Children[1].ID != "occ3" {
		t.Errorf("children = [%s %s], want [occ2 occ3]", root.Children[0].ID, root.Children[1].ID)
	}
	// occ2 instances a revision without an object string.
	if got := root.Children[0].DisplayName; got != "Bolt" {
		t.Errorf("child DisplayName = %q, want revision name %q", got, "Bolt")
	}
}

func TestDisplayNameFallsBackToOccurrenceID(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#occ1"/>
 <Occurrence id="occ1"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if root.DisplayName != "occ1" {
		t.Errorf("DisplayName = %q, want occurrence id %q", root.DisplayName, "occ1")
	}
}

func TestUnresolvedInstancedRefReported(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#occ1"/>
 <Occurrence id="occ1" instancedRef="#prX"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if root.DisplayName != "occ1" {
		t.Errorf("DisplayName = %q, want fallback to occurrence id", root.DisplayName)
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrUnresolvedRef)) == 0 {
		t.Error("unresolved instanced revision not reported")
	}
}

func TestRootRefsOrder(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#r1 #r2"/>
 <Occurrence id="r2"/>
 <Occurrence id="r1"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	roots := result.ProductViews[0].Roots
	if len(roots) != 2 {
		t.Fatalf("len(Roots) = %d, want 2", len(roots))
	}
	if roots[0].ID != "r1" || roots[1].ID != "r2" {
		t.Errorf("roots = [%s %s], want [r1 r2]", roots[0].ID, roots[1].ID)
	}
}

func TestPrimaryOccurrenceFallback(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" primaryOccurrenceRef="#occ1"/>
 <Occurrence id="occ1"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	roots := result.ProductViews[0].Roots
	if len(roots) != 1 || roots[0].ID != "occ1" {
		t.Fatalf("Roots = %v, want primary occurrence occ1", roots)
	}
}

func TestUnresolvedRootReported(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#missing"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.ProductViews[0].Roots) != 0 {
		t.Error("unresolved root must not produce a tree node")
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrUnresolvedRef)) != 1 {
		t.Error("unresolved root not reported")
	}
}

func TestCycleTerminatesAndReports(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#a"/>
 <Occurrence id="a" occurrenceRefs="#b"/>
 <Occurrence id="b" occurrenceRefs="#a"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if root.ID != "a" {
		t.Fatalf("root.ID = %q, want a", root.ID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != "b" {
		t.Fatalf("children of a = %v, want [b]", root.Children)
	}
	if len(root.Children[0].Children) != 0 {
		t.Error("cyclic edge b->a must not be followed")
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrOccurrenceCycle)) != 1 {
		t.Error("cycle not reported")
	}
}

func TestSelfCycleTerminatesAndReports(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#a"/>
 <Occurrence id="a" occurrenceRefs="#a"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if len(root.Children) != 0 {
		t.Error("self cycle must not be followed")
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrOccurrenceCycle)) != 1 {
		t.Error("self cycle not reported")
	}
}

func TestSharedSubtreeIsNotACycle(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#a"/>
 <Occurrence id="a" occurrenceRefs="#b #c"/>
 <Occurrence id="b" occurrenceRefs="#d"/>
 <Occurrence id="c" occurrenceRefs="#d"/>
 <Occurrence id="d"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if len(root.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(root.Children))
	}
	for _, child := range root.Children {
		if len(child.Children) != 1 || child.Children[0].ID != "d" {
			t.Errorf("child %s subtree = %v, want [d]", child.ID, child.Children)
		}
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrOccurrenceCycle)) != 0 {
		t.Error("diamond sharing must not be reported as a cycle")
	}
}

func TestUnresolvedChildDroppedAndReported(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#a"/>
 <Occurrence id="a" occurrenceRefs="#missing #b"/>
 <Occurrence id="b"/>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if len(root.Children) != 1 || root.Children[0].ID != "b" {
		t.Fatalf("Children = %v, want [b]", root.Children)
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrUnresolvedRef)) != 1 {
		t.Error("unresolved child not reported")
	}
}

// The dataset reference stays on the node so the caller can render an
// "unknown" placeholder; the miss is still reported.
func TestUnresolvedDataSetKeptAndReported(t *testing.T) {
	doc := `<PLMXML>
 <ProductView id="pv1" rootRefs="#occ1"/>
 <Occurrence id="occ1" instancedRef="#pr1"/>
 <ProductRevision id="pr1" name="Part">
  <AssociatedDataSet dataSetRef="#dsX"/>
 </ProductRevision>
</PLMXML>`

	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := result.ProductViews[0].Roots[0]
	if len(root.DataSetRefs) != 1 || root.DataSetRefs[0] != "dsX" {
		t.Fatalf("DataSetRefs = %v, want [dsX]", root.DataSetRefs)
	}
	if _, ok := result.DataSets["dsX"]; ok {
		t.Fatal("DataSets[dsX] unexpectedly resolves")
	}
	if len(diagnosticsWithCode(result.Diagnostics, errors.ErrUnresolvedRef)) != 1 {
		t.Error("unresolved dataset not reported")
	}
}

func TestLinkerDoesNotMutateTables(t *testing.T) {
	result := parseSample(t)

	// The linker copies the revision's dataset list; growing the node's copy
	// must not touch the table record.
	root := result.ProductViews[0].Roots[0]
	root.DataSetRefs = append(root.DataSetRefs, "extra")
	if got := result.ProductRevisions["pr1"].DataSetRefs; len(got) != 1 {
		t.Errorf("revision DataSetRefs = %v, want [ds1]", got)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	first, err := Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !reflect.DeepEqual(first.ProductViews, second.ProductViews) {
		t.Error("same bytes produced different trees")
	}
	if !reflect.DeepEqual(first.Diagnostics, second.Diagnostics) {
		t.Error("same bytes produced different diagnostics")
	}
}
