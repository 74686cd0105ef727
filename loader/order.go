package loader

import (
	"fmt"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/svd2zig/svd"
)

type peripheralNode struct {
	index int
}

func (n peripheralNode) ID() int64 {
	return int64(n.index)
}

// derivationOrder returns the indices of the peripheral elements ordered so
// that every prototype appears before the peripherals derived from it.
// Derivation chains are legal in SVD, so this is a topological sort over the
// prototype-to-derived edges.
func derivationOrder(peripherals svd.PeripheralsElement) ([]int, error) {
	graph := multi.NewDirectedGraph()
	for i := range peripherals.Elements {
		graph.AddNode(peripheralNode{index: i})
	}

	for i, element := range peripherals.Elements {
		if len(element.DerivedFrom) == 0 {
			continue
		}
		proto, ok := peripherals.Find(element.DerivedFrom)
		if !ok {
			// Leave the dangling reference for loadPeripheral to report.
			continue
		}
		if proto == i {
			return nil, fmt.Errorf("%w: %s", ErrDerivationCycle, element.Name)
		}
		graph.SetLine(graph.NewLine(peripheralNode{index: proto}, peripheralNode{index: i}))
	}

	sorted, err := topo.Sort(graph)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivationCycle, err)
	}

	order := make([]int, len(sorted))
	for i, node := range sorted {
		order[i] = node.(peripheralNode).index
	}
	return order, nil
}
