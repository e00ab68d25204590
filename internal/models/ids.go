package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ProductGID builds the global id of a product from its numeric id.
func ProductGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", id)
}

// ParseNumericID returns the numeric tail of a global id such as
// gid://shopify/ProductVariant/56327039746432. Plain numeric strings are
// accepted as they are.
func ParseNumericID(gid string) (int64, error) {
	tail := gid
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		tail = gid[i+1:]
	}
	id, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", gid)
	}
	return id, nil
}
