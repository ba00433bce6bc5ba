package catalog

import "github.com/nadeeshan/labelpress/internal/models"

// PageSize is the number of results shown per page.
const PageSize = 5

// TotalPages returns the page count for n results. An empty result set still
// has one (empty) page, so a valid page number always exists.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage forces page into [1, TotalPages(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if max := TotalPages(n); page > max {
		return max
	}
	return page
}

// Paginate returns the slice of results visible on the given page. The page
// number is clamped first, so callers cannot read past either boundary.
func Paginate(results []models.NormalizedProduct, page int) []models.NormalizedProduct {
	page = ClampPage(page, len(results))
	start := (page - 1) * PageSize
	if start >= len(results) {
		return nil
	}
	end := start + PageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
