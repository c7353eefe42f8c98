package export

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is an inclusive range of page numbers.
type PageRange struct {
	Start int
	End   int
}

// PageRangeSet is a page selection such as "1-3,7".
type PageRangeSet struct {
	ranges []PageRange
}

// ParsePageRanges parses a page range string like "1-2,5,10-15". An empty
// string selects every page.
func ParsePageRanges(rangeStr string) (*PageRangeSet, error) {
	var ranges []PageRange

	for _, part := range strings.Split(rangeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if startStr, endStr, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(startStr))
			if err != nil {
				return nil, fmt.Errorf("invalid start page: %s", startStr)
			}
			end, err := strconv.Atoi(strings.TrimSpace(endStr))
			if err != nil {
				return nil, fmt.Errorf("invalid end page: %s", endStr)
			}
			if start > end {
				return nil, fmt.Errorf("start page (%d) cannot be greater than end page (%d)", start, end)
			}
			ranges = append(ranges, PageRange{Start: start, End: end})
			continue
		}

		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", part)
		}
		ranges = append(ranges, PageRange{Start: page, End: page})
	}

	return &PageRangeSet{ranges: ranges}, nil
}

// IsAll reports whether the set selects every page.
func (prs *PageRangeSet) IsAll() bool {
	return prs == nil || len(prs.ranges) == 0
}

// Contains checks if a page number is within any of the ranges.
func (prs *PageRangeSet) Contains(pageNum int) bool {
	if prs.IsAll() {
		return true
	}
	for _, r := range prs.ranges {
		if pageNum >= r.Start && pageNum <= r.End {
			return true
		}
	}
	return false
}

// ValidateAgainstTotal checks that every page exists in a document of
// totalPages pages.
func (prs *PageRangeSet) ValidateAgainstTotal(totalPages int) error {
	if prs.IsAll() {
		return nil
	}
	for _, r := range prs.ranges {
		if r.Start < 1 {
			return fmt.Errorf("page numbers must be 1 or greater, got: %d", r.Start)
		}
		if r.End > totalPages {
			return fmt.Errorf("page %d exceeds total pages (%d)", r.End, totalPages)
		}
	}
	return nil
}

// Pages lists the selected pages of a totalPages document in ascending
// order, each once.
func (prs *PageRangeSet) Pages(totalPages int) []int {
	var pages []int
	for n := 1; n <= totalPages; n++ {
		if prs.Contains(n) {
			pages = append(pages, n)
		}
	}
	return pages
}

// String returns the canonical form of the set.
func (prs *PageRangeSet) String() string {
	if prs.IsAll() {
		return ""
	}

	parts := make([]string, 0, len(prs.ranges))
	for _, r := range prs.ranges {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
	}
	return strings.Join(parts, ",")
}
