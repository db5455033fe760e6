package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Article numbers mix plain integers ("2", "80") with fractional or lettered
// designations ("2.1", "80bis"). Listings order the integers numerically
// first and everything else lexically after them.
//
// The ordering is materialised as a sortable string key so the database can
// apply it with a plain ORDER BY and keep pagination deterministic.

// numericKeyWidth fits the largest uint64, so zero-padding preserves numeric order.
const numericKeyWidth = 20

// ArticleSortKey returns the ordering key stored on version rows. Numeric
// article numbers map below every non-numeric one.
func ArticleSortKey(article string) string {
	if n, err := strconv.ParseUint(article, 10, 64); err == nil {
		return fmt.Sprintf("0%0*d", numericKeyWidth, n)
	}
	return "1" + article
}

// CompareArticleNumbers orders two article numbers the same way their sort
// keys do, with the raw string as a tie-break for numerically equal spellings
// such as "07" and "7".
func CompareArticleNumbers(a, b string) int {
	if c := strings.Compare(ArticleSortKey(a), ArticleSortKey(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
