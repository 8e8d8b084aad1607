package topogen

// ifalloc.go implements the per-node interface index allocator.  Interface
// names follow the fixed template GigabitEthernet0/0/0/<n>; the allocator
// recovers the highest index each node already uses from the existing link
// collection, and hands out strictly increasing indices from there

import (
	"fmt"
	"regexp"
	"strconv"
)

// InterfaceTemplate is the naming template every allocated interface follows
const InterfaceTemplate = "GigabitEthernet0/0/0/%d"

// trailing integer of an interface string identifies its index; interface
// strings without one count as index 0
var intrfcIndexPattern = regexp.MustCompile(`(\d+)$`)

// An InterfaceAllocator hands out interface names for link endpoints.  The
// indices allocated for a node never collide with those discovered during the
// initial scan and never repeat; no upper bound is enforced
type InterfaceAllocator struct {
	// highest index handed out or observed, per node id
	highWater map[string]int
}

// interfaceIndex extracts the trailing integer of an interface name,
// returning 0 when the name is empty or carries no such integer
func interfaceIndex(name string) int {
	match := intrfcIndexPattern.FindString(name)
	if len(match) == 0 {
		return 0
	}
	idx, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return idx
}

// CreateInterfaceAllocator scans the existing links and records, per node id,
// the highest interface index already in use on that node
func CreateInterfaceAllocator(links []Link) *InterfaceAllocator {
	alloc := new(InterfaceAllocator)
	alloc.highWater = make(map[string]int)

	for _, link := range links {
		alloc.observe(link.Source, link.SourceInterface)
		alloc.observe(link.Target, link.TargetInterface)
	}
	return alloc
}

// observe folds one endpoint's interface name into the node's high-water mark
func (alloc *InterfaceAllocator) observe(nodeID, intrfcName string) {
	idx := interfaceIndex(intrfcName)
	if idx > alloc.highWater[nodeID] {
		alloc.highWater[nodeID] = idx
	}
}

// NextIndex returns the next unused interface index for the node
func (alloc *InterfaceAllocator) NextIndex(nodeID string) int {
	alloc.highWater[nodeID] += 1
	return alloc.highWater[nodeID]
}

// Next allocates and formats the next interface name for the node
func (alloc *InterfaceAllocator) Next(nodeID string) string {
	return fmt.Sprintf(InterfaceTemplate, alloc.NextIndex(nodeID))
}
