// Package affinity computes CPU affinity masks in the form Windows'
// `start /affinity` expects.
package affinity

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// MaxCores is the number of cores a single affinity mask can address.
const MaxCores = 64

// Available returns the number of logical CPUs usable by this process.
func Available() int {
	return runtime.NumCPU()
}

// ParseCores parses a core list such as "0,2-5,8". The result is sorted
// and has no duplicates.
func ParseCores(spec string) ([]int, error) {
	var cores []int

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid core %q in %q", part, spec)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("invalid core range %q in %q", part, spec)
			}
		}
		if first < 0 || last < first {
			return nil, fmt.Errorf("invalid core range %q in %q", part, spec)
		}
		if last >= MaxCores {
			return nil, fmt.Errorf("core %d in %q is outside 0-%d", last, spec, MaxCores-1)
		}

		for c := first; c <= last; c++ {
			cores = append(cores, c)
		}
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("core list %q selects no cores", spec)
	}

	cores = lo.Uniq(cores)
	sort.Ints(cores)
	return cores, nil
}

// Select picks the cores to pin to. A non-empty spec is parsed and
// checked against total; otherwise every core from skip to total-1 is
// used.
func Select(total int, spec string, skip int) ([]int, error) {
	if total <= 0 {
		return nil, fmt.Errorf("invalid core count %d", total)
	}
	total = min(total, MaxCores)

	if spec != "" {
		cores, err := ParseCores(spec)
		if err != nil {
			return nil, err
		}
		if bad, ok := lo.Find(cores, func(c int) bool { return c >= total }); ok {
			return nil, fmt.Errorf("core %d does not exist on this machine (%d cores)", bad, total)
		}
		return cores, nil
	}

	if skip >= total {
		return nil, fmt.Errorf("skipping %d cores leaves none of %d", skip, total)
	}
	return lo.RangeFrom(skip, total-skip), nil
}

// Mask sets one bit per core.
func Mask(cores []int) (uint64, error) {
	if len(cores) == 0 {
		return 0, fmt.Errorf("empty core list")
	}
	var mask uint64
	for _, c := range cores {
		if c < 0 || c >= MaxCores {
			return 0, fmt.Errorf("core %d is outside 0-%d", c, MaxCores-1)
		}
		mask |= 1 << uint(c)
	}
	return mask, nil
}

// Hex formats a mask as upper-case hexadecimal without a prefix.
func Hex(mask uint64) string {
	return strings.ToUpper(strconv.FormatUint(mask, 16))
}

// Format renders a core list back into compact "0,2-5" form.
func Format(cores []int) string {
	var parts []string
	for i := 0; i < len(cores); {
		j := i
		for j+1 < len(cores) && cores[j+1] == cores[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(cores[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", cores[i], cores[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
