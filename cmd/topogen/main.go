package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iti/rngstream"

	"github.com/netviz-pro/topogen"
)

func main() {
	input := flag.String("in", "topology.json", "Input topology file (json or yaml)")
	output := flag.String("out", "topology_expanded.json", "Output topology file")
	planFile := flag.String("plan", "", "Expansion plan file, empty selects the built-in plan")
	seed := flag.Uint64("seed", 0, "Master RNG seed, 0 seeds from the clock")
	flag.Parse()

	// a pinned seed makes the generated edge set reproducible
	if *seed == 0 {
		rngstream.SetRngStreamMasterSeed(uint64(time.Now().UnixNano()))
	} else {
		rngstream.SetRngStreamMasterSeed(*seed)
	}

	tp, err := topogen.ReadTopology(*input, topogen.UseYAML(*input), []byte{})
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d nodes and %d links from %s\n", len(tp.Nodes), len(tp.Links), *input)

	plan := topogen.DefaultExpansionPlan()
	if len(*planFile) > 0 {
		plan, err = topogen.ReadExpansionPlan(*planFile, topogen.UseYAML(*planFile), []byte{})
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	}

	plan.Normalize()
	err = plan.Validate()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	expander := topogen.CreateExpander(tp, plan, rngstream.New("expander"))
	expander.Expand(time.Now())

	err = tp.WriteToFile(*output)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *output)
}
