// Package queries implements saved-search alerting: replaying stored
// listing queries against the marketplace, filtering the results, and
// reporting listings that have not been seen before.
package queries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

// Fields the query endpoint either ignores or chokes on when replayed from
// a saved search.
var uselessSavedSearchAttrs = []string{
	"price",
	"sort",
	"categoryName",
	"sellerName",
	"layout",
	"searchOption",
}

// Saved searches and ad-hoc queries disagree on a few field names.
var savedSearchRenames = map[string]string{
	"categoryLevelNum":    "categoryLevel",
	"isWedding":           "isWeddingCategory",
	"selectedCategoryIds": "catIds",
}

// queryDefaults is every field the search endpoint expects to be present;
// locally stored queries only need to carry the interesting ones.
var queryDefaults = map[string]any{
	"isSize":                         false,
	"isWeddingCatagory":              "false",
	"isMultipleCategoryIds":          false,
	"isFromHeaderMenuTab":            false,
	"layout":                         "",
	"searchText":                     "",
	"selectedGroup":                  "",
	"selectedCategoryIds":            "",
	"selectedSellerIds":              "",
	"lowPrice":                       "0",
	"highPrice":                      "999999",
	"searchBuyNowOnly":               "",
	"searchPickupOnly":               "false",
	"searchNoPickupOnly":             "false",
	"searchOneCentShippingOnly":      "false",
	"searchDescriptions":             "false",
	"searchClosedAuctions":           "false",
	"closedAuctionEndingDate":        "1/1/1",
	"closedAuctionDaysBack":          "7",
	"searchCanadaShipping":           "false",
	"searchInternationalShippingOnly": "false",
	"sortColumn":                     "1",
	"page":                           "1",
	"pageSize":                       "40",
	"sortDescending":                 "false",
	"savedSearchId":                  0,
	"useBuyerPrefs":                  "true",
	"searchUSOnlyShipping":           "false",
	"categoryLevelNo":                "1",
	"categoryLevel":                  1,
	"categoryId":                     0,
	"partNumber":                     "",
	"catIds":                         "",
}

// ApplyQueryDefaults fills in every field the endpoint requires that the
// stored query omitted. The input map is not modified.
func ApplyQueryDefaults(query map[string]any) map[string]any {
	out := make(map[string]any, len(queryDefaults)+len(query))
	for k, v := range queryDefaults {
		out[k] = v
	}
	for k, v := range query {
		out[k] = v
	}
	return out
}

// SavedSearchToQuery contorts a server-side saved search into a valid query
// payload: drop the attributes the query endpoint rejects, rename the
// fields the two schemas disagree on, derive selectedCategoryIds from the
// deepest category ID, and stringify-and-lowercase everything, which is
// what the endpoint actually accepts.
func SavedSearchToQuery(search shopgoodwill.SavedSearch) map[string]any {
	q := make(map[string]any, len(search))
	for k, v := range search {
		q[k] = v
	}

	for _, attr := range uselessSavedSearchAttrs {
		delete(q, attr)
	}
	for oldName, newName := range savedSearchRenames {
		if v, ok := q[oldName]; ok {
			q[newName] = v
			delete(q, oldName)
		}
	}

	if catIDs, ok := q["catIds"].(string); ok && catIDs != "" {
		maxID := 0
		for _, part := range strings.Split(catIDs, ",") {
			if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && id > maxID {
				maxID = id
			}
		}
		q["selectedCategoryIds"] = maxID
	}

	for k, v := range q {
		q[k] = strings.ToLower(stringify(v))
	}
	return q
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// json numbers; keep integers unadorned
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
