package topogen

// file topology.go holds the structs, methods, and data structures describing
// a router topology document: the nodes, the links that join them, and the
// summary metadata carried along with them in the serialized file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// A LinkCapacity struct describes the speed of one side of a link.  Speed is
// the symbolic line rate ("1G", "10G"), TotalCapacityMbps the numeric one,
// and IsBundle indicates an aggregate of several member circuits
type LinkCapacity struct {
	Speed             string `json:"speed" yaml:"speed"`
	IsBundle          bool   `json:"is_bundle" yaml:"is_bundle"`
	TotalCapacityMbps int    `json:"total_capacity_mbps" yaml:"total_capacity_mbps"`
}

// A LinkTraffic struct holds the per-direction traffic counters carried on a
// link.  Freshly generated links carry all-zero counters
type LinkTraffic struct {
	ForwardTrafficMbps    float64 `json:"forward_traffic_mbps" yaml:"forward_traffic_mbps"`
	ForwardUtilizationPct float64 `json:"forward_utilization_pct" yaml:"forward_utilization_pct"`
	ReverseTrafficMbps    float64 `json:"reverse_traffic_mbps" yaml:"reverse_traffic_mbps"`
	ReverseUtilizationPct float64 `json:"reverse_utilization_pct" yaml:"reverse_utilization_pct"`
}

// A Node struct describes one router in the topology document.
// NeighborCount is derived, written by the audit pass and overwritten
// on every subsequent one
type Node struct {
	// ID is the unique key for the node across the whole document
	ID string `json:"id" yaml:"id"`

	Name     string `json:"name" yaml:"name"`
	Hostname string `json:"hostname" yaml:"hostname"`

	// LoopbackIP assignment is best-effort unique, see the generator
	LoopbackIP string `json:"loopback_ip" yaml:"loopback_ip"`

	// Country is the group tag used to cluster nodes
	Country string `json:"country" yaml:"country"`

	IsActive bool   `json:"is_active" yaml:"is_active"`
	NodeType string `json:"node_type" yaml:"node_type"`

	// NeighborCount equals the number of link endpoints referencing this
	// node, a link from the node to itself contributing twice
	NeighborCount int `json:"neighbor_count,omitempty" yaml:"neighbor_count,omitempty"`
}

// A Link struct describes one edge of the topology.  Source and Target hold
// node ids; the link does not own the nodes and no referential integrity is
// enforced at write time.  The fields tagged 'required' form the set whose
// absence the audit reports per link
type Link struct {
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`

	// interface names are unique per owning node, a guarantee of the
	// interface allocator rather than of any global deduplication
	SourceInterface string `json:"source_interface" yaml:"source_interface" validate:"required"`
	TargetInterface string `json:"target_interface" yaml:"target_interface" validate:"required"`

	// cost fields are pointers so a present zero is distinguishable from
	// an absent field; the audit requires presence, not any value
	ForwardCost *int `json:"forward_cost" yaml:"forward_cost" validate:"required"`
	ReverseCost *int `json:"reverse_cost" yaml:"reverse_cost" validate:"required"`
	Cost        *int `json:"cost" yaml:"cost" validate:"required"`

	Status       string `json:"status" yaml:"status" validate:"required"`
	EdgeType     string `json:"edge_type" yaml:"edge_type"`
	IsAsymmetric bool   `json:"is_asymmetric" yaml:"is_asymmetric"`

	SourceCapacity LinkCapacity `json:"source_capacity" yaml:"source_capacity"`
	TargetCapacity LinkCapacity `json:"target_capacity" yaml:"target_capacity"`
	Traffic        LinkTraffic  `json:"traffic" yaml:"traffic"`
}

// costPtr wraps a cost value in the pointer form the Link struct carries
func costPtr(cost int) *int {
	return &cost
}

// A Metadata struct summarizes the document it travels with
type Metadata struct {
	NodeCount       int    `json:"node_count" yaml:"node_count"`
	EdgeCount       int    `json:"edge_count" yaml:"edge_count"`
	Description     string `json:"description" yaml:"description"`
	ExportTimestamp string `json:"export_timestamp" yaml:"export_timestamp"`
}

// Topology is the top-level document: ordered node and link sequences
// plus the summary metadata.  It is loaded whole, mutated in memory,
// and serialized whole
type Topology struct {
	Nodes    []Node   `json:"nodes" yaml:"nodes"`
	Links    []Link   `json:"links" yaml:"links"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// CreateTopology is an initialization constructor for an empty document
func CreateTopology() *Topology {
	topo := new(Topology)
	topo.Nodes = make([]Node, 0)
	topo.Links = make([]Link, 0)
	return topo
}

// NodeByID returns the node with the given id, and a flag reporting
// whether it was found
func (topo *Topology) NodeByID(id string) (*Node, bool) {
	for idx := range topo.Nodes {
		if topo.Nodes[idx].ID == id {
			return &topo.Nodes[idx], true
		}
	}
	return nil, false
}

// NodesByCountry returns the ids of all nodes tagged with the given country,
// in document order
func (topo *Topology) NodesByCountry(country string) []string {
	ids := make([]string, 0)
	for idx := range topo.Nodes {
		if topo.Nodes[idx].Country == country {
			ids = append(ids, topo.Nodes[idx].ID)
		}
	}
	return ids
}

// HasCountry indicates whether at least one node carries the given country tag
func (topo *Topology) HasCountry(country string) bool {
	return len(topo.NodesByCountry(country)) > 0
}

// Restamp recomputes the summary counts, rewrites the description,
// and stamps the current time on the metadata
func (topo *Topology) Restamp(now time.Time) {
	topo.Metadata.NodeCount = len(topo.Nodes)
	topo.Metadata.EdgeCount = len(topo.Links)
	topo.Metadata.Description = fmt.Sprintf("Backbone topology with %d routers and %d links",
		len(topo.Nodes), len(topo.Links))
	topo.Metadata.ExportTimestamp = now.Format(time.RFC3339)
}

// WriteToFile stores the Topology struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (topo *Topology) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*topo)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*topo, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	err := f.Close()
	if err != nil {
		panic(err)
	}

	return werr
}

// ReadTopology deserializes a byte slice holding a representation of a Topology
// struct.  If the input argument of dict (those bytes) is empty, the file whose
// name is given is read to acquire them.  A deserialized representation is
// returned, or an error if one is generated from a file read or the deserialization.
func ReadTopology(topoFileName string, useYAML bool, dict []byte) (*Topology, error) {
	var err error

	// read from the file only if the byte slice is empty
	// validate input file name
	if len(dict) == 0 {
		fileInfo, err := os.Stat(topoFileName)
		if os.IsNotExist(err) || fileInfo.IsDir() {
			msg := fmt.Sprintf("topology %s does not exist or cannot be read", topoFileName)
			fmt.Println(msg)

			return nil, errors.New(msg)
		}
		dict, err = os.ReadFile(topoFileName)
		if err != nil {
			return nil, err
		}
	}

	example := Topology{}

	// extension of input file name indicates whether we are deserializing json or yaml
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// UseYAML reports whether the extension of the given file name selects
// yaml rather than json encoding
func UseYAML(filename string) bool {
	pathExt := strings.ToLower(path.Ext(filename))
	return pathExt == ".yaml" || pathExt == ".yml"
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}
