package topogen

// validate.go implements the structural audit of a topology document.  The
// audit itself is a pure function returning a report; writing the computed
// degree annotations back into the document is a separate step, so checking
// a file never implicitly mutates it

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"
)

// shared struct validator, configured once to report json field names
var fieldValidator *validator.Validate

// structValidator returns the package's validator instance after ensuring it
// has been built
func structValidator() *validator.Validate {
	if fieldValidator == nil {
		fieldValidator = validator.New()
		fieldValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
	return fieldValidator
}

// A LinkFieldIssue records one required field found absent on one link,
// identified by the link's position in the document
type LinkFieldIssue struct {
	Link  int
	Field string
}

// An AuditReport holds everything one audit pass computed about a document
type AuditReport struct {
	// required link fields found absent, as (link position, field) pairs
	FieldIssues []LinkFieldIssue

	// dominance verdict for the core group, nil when satisfied
	DominanceErr error

	// link endpoint count per node id; a self-loop contributes twice
	Degrees map[string]int

	// node ids referenced by links but carried by no node record
	UnknownEndpoints []string

	// node ids with no link endpoint at all, reported as warnings
	Isolated []string

	// descriptive degree statistics over all nodes
	MinDegree  float64
	MaxDegree  float64
	MeanDegree float64

	// number of connected components of the simple-graph projection
	Components int

	core  string
	ratio float64
}

// ComputeDegrees counts, for every node of the document, the link endpoints
// referencing it.  Endpoints naming an id with no node record are returned
// separately, sorted and deduplicated
func ComputeDegrees(tp *Topology) (map[string]int, []string) {
	degrees := make(map[string]int)
	for _, node := range tp.Nodes {
		degrees[node.ID] = 0
	}

	unknown := make(map[string]bool)
	count := func(id string) {
		_, present := degrees[id]
		if present {
			degrees[id] += 1
		} else {
			unknown[id] = true
		}
	}

	for _, link := range tp.Links {
		count(link.Source)
		count(link.Target)
	}

	missing := make([]string, 0, len(unknown))
	for id := range unknown {
		missing = append(missing, id)
	}
	sort.Strings(missing)

	return degrees, missing
}

// AnnotateDegrees overwrites every node's neighbor count with its freshly
// computed degree.  Run on its own output it reproduces the same counts
func (tp *Topology) AnnotateDegrees() {
	degrees, _ := ComputeDegrees(tp)
	for idx := range tp.Nodes {
		tp.Nodes[idx].NeighborCount = degrees[tp.Nodes[idx].ID]
	}
}

// checkLinkFields runs the required-field validation over every link,
// collecting one issue per absent field
func checkLinkFields(tp *Topology) []LinkFieldIssue {
	issues := make([]LinkFieldIssue, 0)
	for idx := range tp.Links {
		err := structValidator().Struct(tp.Links[idx])
		if err == nil {
			continue
		}
		for _, fe := range err.(validator.ValidationErrors) {
			issues = append(issues, LinkFieldIssue{Link: idx, Field: fe.Field()})
		}
	}
	return issues
}

// countComponents projects the document onto a simple undirected graph and
// counts its connected components.  As in a hop-count view of the network,
// parallel links collapse to one edge and self-loops are ignored; isolated
// nodes count as their own component
func countComponents(tp *Topology) int {
	if len(tp.Nodes) == 0 {
		return 0
	}

	// gNodes[id] is the graph representation of the node with that id
	gNodes := make(map[string]simple.Node)
	connGraph := simple.NewUndirectedGraph()

	nextID := int64(0)
	for _, node := range tp.Nodes {
		_, present := gNodes[node.ID]
		if present {
			continue
		}
		gNodes[node.ID] = simple.Node(nextID)
		connGraph.AddNode(gNodes[node.ID])
		nextID += 1
	}

	for _, link := range tp.Links {
		src, srcKnown := gNodes[link.Source]
		dst, dstKnown := gNodes[link.Target]
		if !srcKnown || !dstKnown || src == dst {
			continue
		}
		if !connGraph.HasEdgeBetween(src.ID(), dst.ID()) {
			connGraph.SetEdge(simple.Edge{F: src, T: dst})
		}
	}

	return len(topo.ConnectedComponents(connGraph))
}

// Audit recomputes the derived structure of the document and checks its
// invariants against the plan: required link fields, the core group's
// dominance ratio over the other configured groups, node isolation, and
// degree statistics.  The document is not modified
func Audit(tp *Topology, plan *ExpansionPlan) *AuditReport {
	report := new(AuditReport)
	report.core = plan.CoreCountry
	report.ratio = plan.DominanceRatio

	report.FieldIssues = checkLinkFields(tp)

	counts := make(map[string]int)
	for _, grp := range plan.Groups {
		counts[grp.Country] = len(tp.NodesByCountry(grp.Country))
	}
	report.DominanceErr = CheckDominance(counts, plan.CoreCountry, plan.DominanceRatio)

	report.Degrees, report.UnknownEndpoints = ComputeDegrees(tp)

	report.Isolated = make([]string, 0)
	for _, node := range tp.Nodes {
		if report.Degrees[node.ID] == 0 {
			report.Isolated = append(report.Isolated, node.ID)
		}
	}

	if len(tp.Nodes) > 0 {
		values := make([]float64, 0, len(report.Degrees))
		for _, degree := range report.Degrees {
			values = append(values, float64(degree))
		}
		report.MinDegree = floats.Min(values)
		report.MaxDegree = floats.Max(values)
		report.MeanDegree = stat.Mean(values, nil)
	}

	report.Components = countComponents(tp)

	return report
}

// Passed reports the overall audit verdict.  Isolated nodes, unknown
// endpoints, and fragmentation are warnings only
func (report *AuditReport) Passed() bool {
	return len(report.FieldIssues) == 0 && report.DominanceErr == nil
}

// Print writes the human-readable audit report to the console
func (report *AuditReport) Print() {
	if len(report.FieldIssues) == 0 {
		fmt.Println("pass: all links carry the required fields")
	} else {
		for _, issue := range report.FieldIssues {
			fmt.Printf("fail: link %d missing field %s\n", issue.Link, issue.Field)
		}
	}

	if report.DominanceErr == nil {
		fmt.Printf("pass: %s meets the %.1fx dominance ratio\n", report.core, report.ratio)
	} else {
		fmt.Printf("fail: %v\n", report.DominanceErr)
	}

	for _, id := range report.UnknownEndpoints {
		fmt.Printf("warn: links reference unknown node %s\n", id)
	}
	for _, id := range report.Isolated {
		fmt.Printf("warn: node %s has no links\n", id)
	}
	if report.Components > 1 {
		fmt.Printf("warn: topology splits into %d components\n", report.Components)
	}

	fmt.Printf("degree min %.0f max %.0f mean %.2f over %d nodes\n",
		report.MinDegree, report.MaxDegree, report.MeanDegree, len(report.Degrees))

	if report.Passed() {
		fmt.Println("audit result: PASS")
	} else {
		fmt.Println("audit result: FAIL")
	}
}
