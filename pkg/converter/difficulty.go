package converter

import "sort"

// Beat Saber difficulty labels in rank order
var difficultyRanks = []string{"Easy", "Normal", "Hard", "Expert", "ExpertPlus"}

// FallbackDifficulty is emitted when neither the ratings nor the
// mapping table produce a label.
const FallbackDifficulty = "Expert"

// DifficultyRank returns the position of a label in Beat Saber's
// ordering, or -1 for labels the format does not define.
func DifficultyRank(label string) int {
	for i, l := range difficultyRanks {
		if l == label {
			return i
		}
	}
	return -1
}

// ResolveDifficulties maps song.ini instrument ratings through the
// user-configured numeric-to-label table and returns the labels to
// emit, rank-sorted. Duplicate labels across instruments collapse.
// The result is never empty: with no matching rating it falls back to
// the highest-rank label the table defines, or to FallbackDifficulty
// when the table is empty.
func ResolveDifficulties(ratings map[string]int, table map[int]string) []string {
	set := make(map[string]bool)
	for _, value := range ratings {
		if label, ok := table[value]; ok {
			set[label] = true
		}
	}

	if len(set) == 0 {
		set[defaultLabel(table)] = true
	}

	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		return DifficultyRank(labels[i]) < DifficultyRank(labels[j])
	})
	return labels
}

func defaultLabel(table map[int]string) string {
	best := ""
	for _, label := range table {
		if best == "" || DifficultyRank(label) > DifficultyRank(best) {
			best = label
		}
	}
	if best == "" {
		return FallbackDifficulty
	}
	return best
}
