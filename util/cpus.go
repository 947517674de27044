package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseCPUList parses a list like "0,2-4" into sorted, distinct CPU ids.
func ParseCPUList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		from, err := strconv.Atoi(lo)
		if err != nil || from < 0 {
			return nil, fmt.Errorf("invalid cpu %q", part)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(hi)
			if err != nil || to < from {
				return nil, fmt.Errorf("invalid cpu range %q", part)
			}
		}
		for cpu := from; cpu <= to; cpu++ {
			seen[cpu] = struct{}{}
		}
	}

	cpus := make([]int, 0, len(seen))
	for cpu := range seen {
		cpus = append(cpus, cpu)
	}
	sort.Ints(cpus)
	return cpus, nil
}
