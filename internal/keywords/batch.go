package keywords

import (
	"strings"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// BuildBatches groups selected keywords by category and merges up to size
// keywords per batch into one OR query. Every input keyword appears in exactly
// one batch. A size of 1 or less yields one unbatched query per keyword.
func BuildBatches(selected []models.Keyword, size int) []models.Batch {
	if size < 1 {
		size = 1
	}

	var order []string
	groups := make(map[string][]models.Keyword)
	for _, k := range selected {
		if _, ok := groups[k.Category]; !ok {
			order = append(order, k.Category)
		}
		groups[k.Category] = append(groups[k.Category], k)
	}

	var batches []models.Batch
	for _, category := range order {
		group := groups[category]
		for start := 0; start < len(group); start += size {
			end := min(start+size, len(group))
			chunk := group[start:end]
			batches = append(batches, models.Batch{
				Category: category,
				Keywords: chunk,
				Query:    orQuery(chunk),
				Batched:  len(chunk) > 1,
			})
		}
	}
	return batches
}

func orQuery(keywords []models.Keyword) string {
	if len(keywords) == 1 {
		return keywords[0].Text
	}
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		if strings.ContainsAny(k.Text, " \t") {
			parts[i] = `"` + k.Text + `"`
		} else {
			parts[i] = k.Text
		}
	}
	return strings.Join(parts, " OR ")
}
