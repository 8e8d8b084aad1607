package topogen

// generate.go builds the synthetic expansion of a topology document: new
// router nodes for every group in the plan, intra-group ring and chord links,
// an inter-group ring, and the fixed bridge edges.  All state the generation
// needs (interface allocator, running node total, random stream) is carried
// explicitly on the Expander so a run is a function of (document, plan, rng)

import (
	"fmt"
	"strings"
	"time"

	"github.com/iti/rngstream"
)

// defaults stamped on every generated link
const (
	defaultLinkCost     = 10
	defaultLinkSpeed    = "1G"
	defaultCapacityMbps = 1000
	linkStatusUp        = "up"
	edgeTypeBackbone    = "backbone"
	nodeTypeRouter      = "router"
)

// An Expander carries the state of one expansion run over a loaded document
type Expander struct {
	topo  *Topology
	plan  *ExpansionPlan
	rng   *rngstream.RngStream
	alloc *InterfaceAllocator

	// number of nodes generated so far across all groups, used to derive
	// loopback addresses
	totalGenerated int

	// ids of the generated members of each group, in positional order
	members map[string][]string

	newNodes []Node
	newLinks []Link
}

// CreateExpander is a constructor.  It seeds the interface allocator from the
// document's existing links so newly allocated interface names never collide
// with ones already in use
func CreateExpander(topo *Topology, plan *ExpansionPlan, rng *rngstream.RngStream) *Expander {
	ex := new(Expander)
	ex.topo = topo
	ex.plan = plan
	ex.rng = rng
	ex.alloc = CreateInterfaceAllocator(topo.Links)
	ex.members = make(map[string][]string)
	ex.newNodes = make([]Node, 0)
	ex.newLinks = make([]Link, 0)
	return ex
}

// randIndex returns a uniformly chosen index in [0, n)
func (ex *Expander) randIndex(n int) int {
	idx := int(ex.rng.RandU01() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// randPair returns two uniformly chosen distinct indices in [0, n).
// The caller guarantees n >= 2
func (ex *Expander) randPair(n int) (int, int) {
	first := ex.randIndex(n)
	second := ex.randIndex(n)
	for second == first {
		second = ex.randIndex(n)
	}
	return first, second
}

// createLink builds a link record between the two named nodes, allocating a
// fresh interface on each end and stamping the uniform link defaults
func (ex *Expander) createLink(source, target string) Link {
	capacity := LinkCapacity{
		Speed:             defaultLinkSpeed,
		IsBundle:          false,
		TotalCapacityMbps: defaultCapacityMbps,
	}
	return Link{
		Source:          source,
		Target:          target,
		SourceInterface: ex.alloc.Next(source),
		TargetInterface: ex.alloc.Next(target),
		ForwardCost:     costPtr(defaultLinkCost),
		ReverseCost:     costPtr(defaultLinkCost),
		Cost:            costPtr(defaultLinkCost),
		Status:          linkStatusUp,
		EdgeType:        edgeTypeBackbone,
		IsAsymmetric:    false,
		SourceCapacity:  capacity,
		TargetCapacity:  capacity,
		Traffic:         LinkTraffic{},
	}
}

// addLink appends a generated link
func (ex *Expander) addLink(source, target string) {
	ex.newLinks = append(ex.newLinks, ex.createLink(source, target))
}

// generateNodes synthesizes the routers for every group of the plan, in plan
// order, with positional indices 1..count within each group.  Group tags are
// assumed mutually distinct and disjoint from existing node ids; that
// precondition is not checked.  Loopback addresses live in 172.16/16, the
// third octet 100 plus the count of nodes generated before this one and the
// fourth the within-group index; uniqueness against nodes from a prior run
// is best-effort only
func (ex *Expander) generateNodes() {
	for _, grp := range ex.plan.Groups {
		prefix := strings.ToLower(grp.Country)
		for idx := 1; idx <= grp.Count; idx += 1 {
			id := fmt.Sprintf("%s-r%d", prefix, idx)
			node := Node{
				ID:         id,
				Name:       id,
				Hostname:   id,
				LoopbackIP: fmt.Sprintf("172.16.%d.%d", 100+ex.totalGenerated, idx),
				Country:    grp.Country,
				IsActive:   true,
				NodeType:   nodeTypeRouter,
			}
			ex.totalGenerated += 1
			ex.newNodes = append(ex.newNodes, node)
			ex.members[grp.Country] = append(ex.members[grp.Country], id)
		}
	}
	fmt.Printf("generated %d routers across %d groups\n", ex.totalGenerated, len(ex.plan.Groups))
}

// buildRings connects each group's members in a closed cycle, member i to
// member (i+1) mod n.  Every generated node picks up at least two link
// endpoints here, so no generated node is isolated by construction.  A
// single-member group degenerates to a self-loop, which is kept but reported
func (ex *Expander) buildRings() {
	ringLinks := 0
	for _, grp := range ex.plan.Groups {
		ids := ex.members[grp.Country]
		n := len(ids)
		if n == 1 {
			fmt.Printf("group %s has a single member, ring degenerates to a self-loop\n", grp.Country)
		}
		for idx := 0; idx < n; idx += 1 {
			ex.addLink(ids[idx], ids[(idx+1)%n])
			ringLinks += 1
		}
	}
	fmt.Printf("ring construction added %d links\n", ringLinks)
}

// buildChords adds max(2, n/3) extra intra-group links between uniformly
// chosen distinct member pairs.  Duplicate pairs are permitted, the consumer
// tolerates parallel links.  Groups with fewer than two members are skipped
func (ex *Expander) buildChords() {
	chordLinks := 0
	for _, grp := range ex.plan.Groups {
		ids := ex.members[grp.Country]
		n := len(ids)
		if n < 2 {
			continue
		}

		chords := n / 3
		if chords < 2 {
			chords = 2
		}
		for c := 0; c < chords; c += 1 {
			first, second := ex.randPair(n)
			ex.addLink(ids[first], ids[second])
			chordLinks += 1
		}
	}
	fmt.Printf("chord construction added %d links\n", chordLinks)
}

// sampleTwo returns two member ids of the group, distinct whenever the group
// has at least two members
func (ex *Expander) sampleTwo(ids []string) (string, string) {
	if len(ids) < 2 {
		return ids[0], ids[0]
	}
	first, second := ex.randPair(len(ids))
	return ids[first], ids[second]
}

// buildInterGroupRing treats the plan's group order as a cycle and, for each
// adjacent group pair, samples two nodes from each side and connects them
// pairwise, so ring-adjacent groups get two independent cross-group links.
// Non-adjacent groups get nothing from this step
func (ex *Expander) buildInterGroupRing() {
	k := len(ex.plan.Groups)
	if k < 2 {
		return
	}

	crossLinks := 0
	for gi := 0; gi < k; gi += 1 {
		side1 := ex.members[ex.plan.Groups[gi].Country]
		side2 := ex.members[ex.plan.Groups[(gi+1)%k].Country]

		a1, a2 := ex.sampleTwo(side1)
		b1, b2 := ex.sampleTwo(side2)
		ex.addLink(a1, b1)
		ex.addLink(a2, b2)
		crossLinks += 2
	}
	fmt.Printf("inter-group ring added %d links\n", crossLinks)
}

// buildBridges wires the fixed bridge table: one link per entry, from a
// random member of the named group to a random node of the peer.  A peer that
// is another generated group resolves to its members; otherwise it must
// already be present in the loaded document, and the bridge is skipped when
// it is not
func (ex *Expander) buildBridges() {
	bridgeLinks := 0
	for _, bridge := range ex.plan.Bridges {
		side := ex.members[bridge.Country]
		if len(side) == 0 {
			fmt.Printf("bridge %s-%s skipped, no generated %s nodes\n",
				bridge.Country, bridge.Peer, bridge.Country)
			continue
		}

		peers := ex.members[bridge.Peer]
		if len(peers) == 0 {
			peers = ex.topo.NodesByCountry(bridge.Peer)
		}
		if len(peers) == 0 {
			fmt.Printf("bridge %s-%s skipped, %s not present in document\n",
				bridge.Country, bridge.Peer, bridge.Peer)
			continue
		}

		ex.addLink(side[ex.randIndex(len(side))], peers[ex.randIndex(len(peers))])
		bridgeLinks += 1
	}
	fmt.Printf("bridge table added %d links\n", bridgeLinks)
}

// Expand runs the whole generation pipeline and merges the result into the
// document: existing nodes and links stay first in their original order, the
// generated ones are appended, and the metadata is recomputed and restamped
func (ex *Expander) Expand(now time.Time) {
	ex.generateNodes()
	ex.buildRings()
	ex.buildChords()
	ex.buildInterGroupRing()
	ex.buildBridges()

	ex.topo.Nodes = append(ex.topo.Nodes, ex.newNodes...)
	ex.topo.Links = append(ex.topo.Links, ex.newLinks...)
	ex.topo.Restamp(now)

	fmt.Printf("document now holds %d nodes and %d links\n",
		len(ex.topo.Nodes), len(ex.topo.Links))
}

// GeneratedNodes returns the nodes synthesized by this run
func (ex *Expander) GeneratedNodes() []Node {
	return ex.newNodes
}

// GeneratedLinks returns the links synthesized by this run
func (ex *Expander) GeneratedLinks() []Link {
	return ex.newLinks
}
