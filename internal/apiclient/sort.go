package apiclient

import "sort"

func sortStats(stats []Stat) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
}
