// Package tally resolves the winner of an election from its recovered votes.
package tally

import "sort"

// Draw is the winner name reported when the highest count is shared.
const Draw = "Draw"

// Outcome is the result of resolving a list of votes.
type Outcome struct {
	// Winner is the most frequent vote, or Draw on a tie.
	Winner string
	Tie    bool
	// Count is the number of votes of the winner (or of each tied option).
	Count int
}

// Name returns the winner name, Draw included.
func (o Outcome) Name() string {
	return o.Winner
}

// Resolve returns the most frequent vote. The votes are sorted (on a copy) and
// scanned once, so the result is the same whatever the submission order. When
// two or more options share the maximum count the outcome is a Draw. An empty
// list is a Draw with zero count.
func Resolve(votes []string) Outcome {
	if len(votes) == 0 {
		return Outcome{Winner: Draw, Tie: true}
	}
	sorted := make([]string, len(votes))
	copy(sorted, votes)
	sort.Strings(sorted)

	mostFrequent := sorted[0]
	maxCount, prevMax, cur := 1, 0, 1
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1] {
			cur++
			continue
		}
		if cur >= maxCount {
			prevMax = maxCount
			maxCount = cur
			mostFrequent = sorted[i-1]
		}
		cur = 1
	}
	if len(sorted) > 1 && prevMax == maxCount {
		return Outcome{Winner: Draw, Tie: true, Count: maxCount}
	}
	return Outcome{Winner: mostFrequent, Count: maxCount}
}

// Counts returns the number of votes per option.
func Counts(votes []string) map[string]int {
	counts := make(map[string]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	return counts
}
