package render

import (
	"net/url"
	"strconv"

	"bedrock-chat/internal/model"
)

// CartLink returns the add-to-cart URL for items: ASIN.n and Quantity.n
// query parameters numbered from 1, the same fields the page's cart form
// posts. It returns "" when there are no items or base is not a safe link.
func CartLink(base string, items []model.CartItem) string {
	if len(items) == 0 {
		return ""
	}
	u, err := url.Parse(SafeLink(base))
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for i, item := range items {
		n := strconv.Itoa(i + 1)
		q.Set("ASIN."+n, item.SKU)
		q.Set("Quantity."+n, strconv.Itoa(item.Quantity))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
