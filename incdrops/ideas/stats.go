package ideas

import "sort"

const notAvailable = "N/A"

// summarizes the retained history
func ComputeStats(history []HistoryEntry) Stats {
	platforms := map[string]int{}
	types := map[string]int{}
	total := 0

	for _, entry := range history {
		total += len(entry.Ideas)

		for _, idea := range entry.Ideas {
			for _, p := range idea.Platforms {
				platforms[p]++
			}

			t := idea.Type
			if t == "" {
				t = "unknown"
			}

			types[t]++
		}
	}

	return Stats{
		TotalGenerated: total,
		TopPlatform:    mostFrequent(platforms),
		MostUsedType:   mostFrequent(types),
		TotalSessions:  len(history),
	}
}

// highest count wins, ties break alphabetically
func mostFrequent(counts map[string]int) string {
	if len(counts) == 0 {
		return notAvailable
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}

		return keys[i] < keys[j]
	})

	return keys[0]
}
