package renumber

import (
	"fmt"
	"sort"
	"strings"

	"github.com/driftlab/imsf/format"
)

// Frame is one frame as seen by the renumberer.
type Frame struct {
	Num  int
	Type format.FrameType
}

// Shift describes one applied renumber batch: every frame in Frames moved
// down by Delta (a negative delta moves up). Frames is the minimal
// range-formatted list of the original frame numbers, e.g. "3-7, 9".
type Shift struct {
	Delta  int
	Frames string
}

// BuildMapping assigns gap-free sequential numbers starting at 1 to the
// given frames and returns the old-to-new mapping.
//
// When the first frame is a calibration frame it is deferred behind the two
// frames that follow it, so frame 1 of the renumbered dataset is always a
// regular frame: legacy readers infer the dataset's scan count from frame 1
// and calibration frames may carry fewer scans.
func BuildMapping(frames []Frame) map[int]int {
	ordered := make([]Frame, len(frames))
	copy(ordered, frames)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	if len(ordered) >= 2 && ordered[0].Type == format.FrameTypeCalibration {
		cal := ordered[0]
		rest := ordered[1:]

		reordered := make([]Frame, 0, len(ordered))
		if len(rest) >= 2 {
			reordered = append(reordered, rest[0], rest[1], cal)
			reordered = append(reordered, rest[2:]...)
		} else {
			reordered = append(reordered, rest...)
			reordered = append(reordered, cal)
		}
		ordered = reordered
	}

	mapping := make(map[int]int, len(ordered))
	for i, frame := range ordered {
		mapping[frame.Num] = i + 1
	}

	return mapping
}

// isIdentity reports whether the mapping moves no frame.
func isIdentity(mapping map[int]int) bool {
	for old, num := range mapping {
		if old != num {
			return false
		}
	}
	return true
}

// batch is a run of frames sharing one shift delta.
type batch struct {
	delta   int
	oldNums []int
}

// coalesce groups frames into batches of equal delta, walking old frame
// numbers ascending. Batches split only when the delta changes, never on
// numeric gaps; frames that do not move produce no batch.
func coalesce(mapping map[int]int) []batch {
	oldNums := make([]int, 0, len(mapping))
	for old := range mapping {
		oldNums = append(oldNums, old)
	}
	sort.Ints(oldNums)

	var batches []batch
	for _, old := range oldNums {
		delta := old - mapping[old]
		if delta == 0 {
			continue
		}

		if n := len(batches); n > 0 && batches[n-1].delta == delta {
			batches[n-1].oldNums = append(batches[n-1].oldNums, old)
			continue
		}
		batches = append(batches, batch{delta: delta, oldNums: []int{old}})
	}

	return batches
}

// formatRanges renders sorted frame numbers as the minimal set of
// contiguous ranges: [3,4,5,6,7,9] becomes "3-7, 9".
func formatRanges(nums []int) string {
	var parts []string

	for i := 0; i < len(nums); {
		j := i
		for j+1 < len(nums) && nums[j+1] == nums[j]+1 {
			j++
		}

		if i == j {
			parts = append(parts, fmt.Sprintf("%d", nums[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", nums[i], nums[j]))
		}
		i = j + 1
	}

	return strings.Join(parts, ", ")
}
