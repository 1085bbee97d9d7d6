package ranking

// LocalSearchResult is the outcome of [LocalSearch].
type LocalSearchResult struct {
	Ordering Ordering
	Score    float64
	Swaps    int
	// Exhausted is true when the swap cap stopped the search before a
	// local optimum was reached.
	Exhausted bool
}

// LocalSearch polishes order by first-improvement hill climbing: pairs are
// scanned in (i, j) order, the first strictly improving transposition is
// applied, and the scan restarts from the top. It stops when a full scan
// finds nothing to improve or after maxSwaps applied swaps. The input is not
// modified.
//
// Applied to its own output, LocalSearch makes no further swaps.
func LocalSearch(scorer Scorer, order Ordering, maxSwaps int) LocalSearchResult {
	cur := order.Clone()
	res := LocalSearchResult{Ordering: cur}

	for {
		if res.Swaps >= maxSwaps {
			res.Exhausted = true
			break
		}
		if !improveOnce(scorer, cur) {
			break
		}
		res.Swaps++
	}

	res.Score = scorer.Score(cur)
	return res
}

func improveOnce(scorer Scorer, order Ordering) bool {
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if scorer.SwapDelta(order, i, j) < -scoreEpsilon {
				order.Swap(i, j)
				return true
			}
		}
	}
	return false
}
