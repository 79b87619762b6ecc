package domain

import "strings"

// Filter derives the displayed subset of list for the two filter axes. It is
// a pure function of its inputs: same inputs, same output, with the relative
// order of list preserved (the result is always a subsequence of list).
//
// The category axis matches exactly (case-insensitive) unless category is
// CategoryAll or empty. The search axis matches the term as a
// case-insensitive substring of name, description, category, the price
// string or the id; an empty term disables the axis. Both axes combine
// conjunctively.
func Filter(list []Product, category, term string) []Product {
	return filterWith(list, func(p Product) bool {
		return matches(p, category, term)
	})
}

// filterWith is fail-open per record: if the predicate panics while
// inspecting one malformed product, that product is excluded and the rest
// still get evaluated.
func filterWith(list []Product, pred func(Product) bool) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		if safeMatch(pred, p) {
			out = append(out, p)
		}
	}
	return out
}

func safeMatch(pred func(Product) bool, p Product) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(p)
}

func matches(p Product, category, term string) bool {
	if category != "" && !strings.EqualFold(category, CategoryAll) {
		if !strings.EqualFold(p.Category, category) {
			return false
		}
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, hay := range []string{p.Name, p.Description, p.Category, p.Price, p.ID} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// CountByCategory tallies products per canonical category, including zeroes,
// for the category cards on the home screen.
func CountByCategory(list []Product) map[Category]int {
	counts := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		counts[c] = 0
	}
	for _, p := range list {
		if c, err := ParseCategory(p.Category); err == nil {
			counts[c]++
		}
	}
	return counts
}
