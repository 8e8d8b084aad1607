package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/netviz-pro/topogen"
)

func main() {
	topoFile := flag.String("topo", "topology_expanded.json", "Topology file to audit (json or yaml)")
	planFile := flag.String("plan", "", "Expansion plan file, empty selects the built-in plan")
	flag.Parse()

	tp, err := topogen.ReadTopology(*topoFile, topogen.UseYAML(*topoFile), []byte{})
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("loaded %d nodes and %d links from %s\n", len(tp.Nodes), len(tp.Links), *topoFile)

	plan := topogen.DefaultExpansionPlan()
	if len(*planFile) > 0 {
		plan, err = topogen.ReadExpansionPlan(*planFile, topogen.UseYAML(*planFile), []byte{})
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	}
	plan.Normalize()

	report := topogen.Audit(tp, plan)
	report.Print()

	// degree annotations are persisted whatever the verdict
	tp.AnnotateDegrees()
	err = tp.WriteToFile(*topoFile)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("rewrote %s with neighbor counts\n", *topoFile)
}
