package topogen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingStatusFieldReported(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes, testNode("a-r1", "A"), testNode("a-r2", "A"))

	link := testLink("a-r1", "a-r2")
	link.Status = ""
	tp.Links = append(tp.Links, link)

	report := Audit(tp, testPlan())
	require.Len(t, report.FieldIssues, 1)
	assert.Equal(t, 0, report.FieldIssues[0].Link)
	assert.Equal(t, "status", report.FieldIssues[0].Field)
	assert.False(t, report.Passed())
}

func TestFieldIssuesNamePositionAndField(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes, testNode("a-r1", "A"), testNode("a-r2", "A"))

	good := testLink("a-r1", "a-r2")
	bad := testLink("a-r2", "a-r1")
	bad.TargetInterface = ""
	bad.Cost = nil
	bad.EdgeType = "" // edge_type is not part of the required set
	tp.Links = append(tp.Links, good, bad)

	report := Audit(tp, testPlan())
	require.Len(t, report.FieldIssues, 2)
	assert.Equal(t, LinkFieldIssue{Link: 1, Field: "target_interface"}, report.FieldIssues[0])
	assert.Equal(t, LinkFieldIssue{Link: 1, Field: "cost"}, report.FieldIssues[1])
}

func TestAbsentCostFieldsReported(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes, testNode("a-r1", "A"), testNode("a-r2", "A"))

	link := testLink("a-r1", "a-r2")
	link.ForwardCost = nil
	link.ReverseCost = nil
	link.Cost = nil
	tp.Links = append(tp.Links, link)

	report := Audit(tp, testPlan())
	require.Len(t, report.FieldIssues, 3)
	assert.Equal(t, LinkFieldIssue{Link: 0, Field: "forward_cost"}, report.FieldIssues[0])
	assert.Equal(t, LinkFieldIssue{Link: 0, Field: "reverse_cost"}, report.FieldIssues[1])
	assert.Equal(t, LinkFieldIssue{Link: 0, Field: "cost"}, report.FieldIssues[2])

	// a cost carried with value zero is present, only outright absence counts
	zeroed := testLink("a-r1", "a-r2")
	zeroed.ForwardCost = costPtr(0)
	zeroed.ReverseCost = costPtr(0)
	zeroed.Cost = costPtr(0)
	tp.Links[0] = zeroed
	assert.Empty(t, Audit(tp, testPlan()).FieldIssues)
}

func TestDominanceFailureOnEqualCounts(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes,
		testNode("a-r1", "A"), testNode("a-r2", "A"),
		testNode("b-r1", "B"), testNode("b-r2", "B"))
	tp.Links = append(tp.Links, testLink("a-r1", "b-r1"), testLink("a-r2", "b-r2"))

	// equal actual counts give ratio 1.0 < 1.4
	report := Audit(tp, testPlan())
	assert.Error(t, report.DominanceErr)
	assert.False(t, report.Passed())
}

func TestDegreesAndWarnings(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes,
		testNode("a-r1", "A"), testNode("a-r2", "A"), testNode("a-r3", "A"))
	tp.Links = append(tp.Links,
		testLink("a-r1", "a-r2"),
		testLink("a-r1", "a-r1"),     // self-loop counts twice
		testLink("a-r2", "ghost-r1")) // dangling endpoint

	report := Audit(tp, testPlan())

	assert.Equal(t, 3, report.Degrees["a-r1"])
	assert.Equal(t, 2, report.Degrees["a-r2"])
	assert.Equal(t, 0, report.Degrees["a-r3"])
	assert.Equal(t, []string{"ghost-r1"}, report.UnknownEndpoints)
	assert.Equal(t, []string{"a-r3"}, report.Isolated)

	assert.Equal(t, 0.0, report.MinDegree)
	assert.Equal(t, 3.0, report.MaxDegree)
	assert.InDelta(t, 5.0/3.0, report.MeanDegree, 1e-9)
}

func TestComponentCount(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes,
		testNode("a-r1", "A"), testNode("a-r2", "A"),
		testNode("b-r1", "B"), testNode("b-r2", "B"))
	tp.Links = append(tp.Links,
		testLink("a-r1", "a-r2"),
		testLink("a-r1", "a-r2"), // parallel link collapses
		testLink("b-r1", "b-r2"))

	report := Audit(tp, testPlan())
	assert.Equal(t, 2, report.Components)
}

func TestAnnotateDegreesIdempotent(t *testing.T) {
	tp := CreateTopology()
	tp.Nodes = append(tp.Nodes, testNode("a-r1", "A"), testNode("a-r2", "A"))
	tp.Links = append(tp.Links, testLink("a-r1", "a-r2"), testLink("a-r2", "a-r2"))

	tp.AnnotateDegrees()
	first := []int{tp.Nodes[0].NeighborCount, tp.Nodes[1].NeighborCount}
	assert.Equal(t, []int{1, 3}, first)

	// a second pass over its own output yields identical counts
	tp.AnnotateDegrees()
	assert.Equal(t, first, []int{tp.Nodes[0].NeighborCount, tp.Nodes[1].NeighborCount})
}

func TestAuditOfGeneratedDocumentPasses(t *testing.T) {
	tp := CreateTopology()
	plan := DefaultExpansionPlan()
	plan.Normalize()
	require.NoError(t, plan.Validate())

	ex := CreateExpander(tp, plan, testRng("audit"))
	ex.Expand(time.Now())

	report := Audit(tp, plan)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Isolated)
	assert.Empty(t, report.UnknownEndpoints)
	assert.GreaterOrEqual(t, report.MinDegree, 2.0)

	// generated rings and the inter-group cycle leave one component
	assert.Equal(t, 1, report.Components)
}
