package data

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	TrueSet  = "true"
	FalseSet = "false"
)

// CommandDataset holds the positive and negative samples of one command.
type CommandDataset struct {
	True  []string
	False []string
}

// NewCommandDataset validates raw sample sets. Only "true" and "false" are
// accepted; a missing set is empty.
func NewCommandDataset(sets map[string][]string) (CommandDataset, error) {
	for name := range sets {
		if name != TrueSet && name != FalseSet {
			return CommandDataset{}, fmt.Errorf("command dataset has unexpected sample set %q", name)
		}
	}
	return CommandDataset{
		True:  append([]string(nil), sets[TrueSet]...),
		False: append([]string(nil), sets[FalseSet]...),
	}, nil
}

func (d CommandDataset) Size() int {
	return len(d.True) + len(d.False)
}

// OrdinalDataset holds the samples of each integer level of a scale.
type OrdinalDataset struct {
	Levels map[int][]string
}

func NewOrdinalDataset(sets map[string][]string) (OrdinalDataset, error) {
	levels := make(map[int][]string, len(sets))
	for name, samples := range sets {
		level, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil {
			return OrdinalDataset{}, fmt.Errorf("ordinal level %q is not an integer", name)
		}
		levels[level] = append(levels[level], samples...)
	}
	return OrdinalDataset{Levels: levels}, nil
}

func (d OrdinalDataset) SortedLevels() []int {
	levels := make([]int, 0, len(d.Levels))
	for level := range d.Levels {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// Labeled returns the samples keyed by the decimal string of their level.
func (d OrdinalDataset) Labeled() map[string][]string {
	labeled := make(map[string][]string, len(d.Levels))
	for level, samples := range d.Levels {
		labeled[strconv.Itoa(level)] = append([]string(nil), samples...)
	}
	return labeled
}

func (d OrdinalDataset) Size() int {
	n := 0
	for _, samples := range d.Levels {
		n += len(samples)
	}
	return n
}

// Stats summarizes a sample-set map for logging.
func Stats(sets map[string][]string) map[string]int {
	stats := make(map[string]int, len(sets))
	for name, samples := range sets {
		stats[name] = len(samples)
	}
	return stats
}
