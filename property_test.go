package topogen

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGenerationInvariants uses property-based testing to verify the
// structural guarantees the generator makes for any plan shape
func TestGenerationInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	// Property 1: the ring step alone produces exactly n links forming one
	// cycle that gives every group member degree 2
	properties.Property("ring gives every member degree two", prop.ForAll(
		func(n int) bool {
			tp := CreateTopology()
			plan := &ExpansionPlan{
				Name: "ring", CoreCountry: "A", DominanceRatio: 1.4,
				Groups: []GroupCount{{Country: "A", Count: n}},
			}
			ex := CreateExpander(tp, plan, testRng("ring-prop"))
			ex.generateNodes()
			ex.buildRings()

			if len(ex.newLinks) != n {
				return false
			}

			degrees := make(map[string]int)
			for _, link := range ex.newLinks {
				degrees[link.Source] += 1
				degrees[link.Target] += 1
			}
			for _, node := range ex.newNodes {
				if degrees[node.ID] != 2 {
					return false
				}
			}

			// one cycle covering the whole group
			tp.Nodes = append(tp.Nodes, ex.newNodes...)
			tp.Links = append(tp.Links, ex.newLinks...)
			return countComponents(tp) == 1
		},
		gen.IntRange(2, 40),
	))

	// Property 2: node count equals existing plus the sum of configured counts
	properties.Property("expansion conserves node counts", prop.ForAll(
		func(counts []int, existing int) bool {
			tp := CreateTopology()
			for i := 0; i < existing; i++ {
				tp.Nodes = append(tp.Nodes, testNode(fmt.Sprintf("us-r%d", i+1), "US"))
			}

			plan := &ExpansionPlan{Name: "sum", CoreCountry: "G1", DominanceRatio: 1.4}
			total := 0
			for i, count := range counts {
				plan.Groups = append(plan.Groups,
					GroupCount{Country: fmt.Sprintf("G%d", i+1), Count: count})
				total += count
			}

			ex := CreateExpander(tp, plan, testRng("sum-prop"))
			ex.Expand(time.Now())

			return len(tp.Nodes) == existing+total && tp.Metadata.NodeCount == len(tp.Nodes)
		},
		gen.SliceOfN(3, gen.IntRange(1, 15)),
		gen.IntRange(0, 5),
	))

	// Property 3: no generated node is isolated, whatever the plan
	properties.Property("generated nodes are never isolated", prop.ForAll(
		func(counts []int) bool {
			tp := CreateTopology()
			plan := &ExpansionPlan{Name: "iso", CoreCountry: "G1", DominanceRatio: 1.4}
			for i, count := range counts {
				plan.Groups = append(plan.Groups,
					GroupCount{Country: fmt.Sprintf("G%d", i+1), Count: count})
			}

			ex := CreateExpander(tp, plan, testRng("iso-prop"))
			ex.Expand(time.Now())

			degrees, _ := ComputeDegrees(tp)
			for _, node := range ex.GeneratedNodes() {
				if degrees[node.ID] < 2 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(2, gen.IntRange(1, 10)),
	))

	properties.TestingRun(t)
}

// TestAllocatorInvariants verifies the interface allocator's guarantees for
// any scan state and allocation count
func TestAllocatorInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("indices continue above the scanned high water mark", prop.ForAll(
		func(scanned, allocations int) bool {
			links := []Link{{
				Source: "de-r1", Target: "de-r2",
				SourceInterface: fmt.Sprintf(InterfaceTemplate, scanned),
				TargetInterface: fmt.Sprintf(InterfaceTemplate, 1),
			}}
			alloc := CreateInterfaceAllocator(links)

			prev := scanned
			for i := 0; i < allocations; i++ {
				idx := interfaceIndex(alloc.Next("de-r1"))
				if idx != prev+1 {
					return false
				}
				prev = idx
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
