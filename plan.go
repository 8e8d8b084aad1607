package topogen

// plan.go holds the configuration for a topology expansion run: the ordered
// list of country groups with their target router counts, the distinguished
// core country whose count must dominate the others, and the fixed table of
// bridge edges wiring new groups to specific peers

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// A GroupCount struct pairs a country tag with the number of routers to
// generate for it.  The order of GroupCount entries in a plan is significant:
// it fixes the inter-group ring and identifies the last-processed entry
// adjusted to meet the overall total target
type GroupCount struct {
	Country string `json:"country" yaml:"country" validate:"required"`
	Count   int    `json:"count" yaml:"count" validate:"gt=0"`
}

// A Bridge struct names a single fixed edge between a node of a newly
// generated group and a node of a peer group.  A bridge whose peer country
// is absent from the loaded document is skipped
type Bridge struct {
	Country string `json:"country" yaml:"country" validate:"required"`
	Peer    string `json:"peer" yaml:"peer" validate:"required"`
}

// ExpansionPlan collects everything the generator needs to know about
// a run, so that generation is a function of (document, plan, rng stream)
type ExpansionPlan struct {
	// Name is an identifier for the plan, a referencing label only
	Name string `json:"planname" yaml:"planname"`

	// CoreCountry is the distinguished group whose count must be at least
	// DominanceRatio times the maximum count among the other groups
	CoreCountry    string  `json:"corecountry" yaml:"corecountry" validate:"required"`
	DominanceRatio float64 `json:"dominanceratio" yaml:"dominanceratio" validate:"gt=0"`

	// TotalTarget, when positive, is the number of generated nodes the plan
	// must sum to; Normalize adjusts the last group to meet it
	TotalTarget int `json:"totaltarget" yaml:"totaltarget" validate:"gte=0"`

	Groups  []GroupCount `json:"groups" yaml:"groups" validate:"min=1,dive"`
	Bridges []Bridge     `json:"bridges" yaml:"bridges" validate:"dive"`
}

// DefaultExpansionPlan returns the plan the batch tools run with when no
// plan file is supplied
func DefaultExpansionPlan() *ExpansionPlan {
	return &ExpansionPlan{
		Name:           "european-backbone",
		CoreCountry:    "DE",
		DominanceRatio: 1.4,
		TotalTarget:    44,
		Groups: []GroupCount{
			{Country: "DE", Count: 14},
			{Country: "FR", Count: 10},
			{Country: "NL", Count: 6},
			{Country: "PL", Count: 6},
			{Country: "ES", Count: 8},
		},
		Bridges: []Bridge{
			// peers present only when the loaded document already carries them
			{Country: "DE", Peer: "US"},
			{Country: "FR", Peer: "GB"},
			// wiring among the generated groups themselves
			{Country: "PL", Peer: "DE"},
			{Country: "ES", Peer: "FR"},
		},
	}
}

// PlannedTotal returns the sum of the per-group counts
func (plan *ExpansionPlan) PlannedTotal() int {
	total := 0
	for _, grp := range plan.Groups {
		total += grp.Count
	}
	return total
}

// Normalize adjusts the count of the last-processed group so that the plan
// sums to TotalTarget, printing the adjustment made.  A plan whose
// TotalTarget is zero is left alone
func (plan *ExpansionPlan) Normalize() {
	if plan.TotalTarget == 0 || len(plan.Groups) == 0 {
		return
	}

	delta := plan.TotalTarget - plan.PlannedTotal()
	if delta == 0 {
		return
	}

	last := &plan.Groups[len(plan.Groups)-1]
	adjusted := last.Count + delta
	fmt.Printf("adjusting %s count %d -> %d to meet total target %d\n",
		last.Country, last.Count, adjusted, plan.TotalTarget)
	last.Count = adjusted
}

// Validate checks the structural constraints on the plan fields, that the
// core country is one of the configured groups, and that its count satisfies
// the dominance ratio over every other group
func (plan *ExpansionPlan) Validate() error {
	err := structValidator().Struct(plan)
	if err != nil {
		return err
	}

	countries := make([]string, 0, len(plan.Groups))
	counts := make(map[string]int)
	for _, grp := range plan.Groups {
		countries = append(countries, grp.Country)
		counts[grp.Country] = grp.Count
	}

	if !slices.Contains(countries, plan.CoreCountry) {
		return fmt.Errorf("core country %s is not among the plan groups", plan.CoreCountry)
	}

	// every bridge must start in a group this plan generates
	for _, bridge := range plan.Bridges {
		if !slices.Contains(countries, bridge.Country) {
			return fmt.Errorf("bridge %s-%s starts in a group the plan does not generate",
				bridge.Country, bridge.Peer)
		}
	}

	return CheckDominance(counts, plan.CoreCountry, plan.DominanceRatio)
}

// CheckDominance verifies that the count recorded for the core group is at
// least ratio times the maximum count among the other groups
func CheckDominance(counts map[string]int, core string, ratio float64) error {
	coreCount := counts[core]

	maxOther := 0
	maxCountry := ""
	for country, count := range counts {
		if country == core {
			continue
		}
		if count > maxOther {
			maxOther = count
			maxCountry = country
		}
	}

	// with no other groups there is nothing to dominate
	if maxOther == 0 {
		return nil
	}

	if float64(coreCount) < ratio*float64(maxOther) {
		return fmt.Errorf("%s count %d is below %.1fx the %s count %d",
			core, coreCount, ratio, maxCountry, maxOther)
	}
	return nil
}

// WriteToFile stores the ExpansionPlan struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (plan *ExpansionPlan) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*plan)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*plan, "", "\t")
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

// ReadExpansionPlan deserializes a byte slice holding a representation of an
// ExpansionPlan struct.  If the input argument of dict (those bytes) is empty,
// the file whose name is given is read to acquire them.  A deserialized
// representation is returned, or an error if one is generated from a file read
// or the deserialization.
func ReadExpansionPlan(filename string, useYAML bool, dict []byte) (*ExpansionPlan, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ExpansionPlan{}
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
