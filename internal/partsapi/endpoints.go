package partsapi

import "fmt"

// Listing names one of the server's table data sources.
type Listing string

const (
	ListingNewRequests    Listing = "api/data/new-requests/"
	ListingOrderedWaiting Listing = "api/data/ordered-waiting/"
	ListingReceived       Listing = "api/data/received/"
	ListingToday          Listing = "api/data/today-entries/"
	ListingMonth          Listing = "api/data/month-entries/"
)

const (
	pathCategories      = "api/categories/list/"
	pathCategoryAdd     = "api/categories/add/"
	pathSaveEntry       = "api/entry/save/"
	fmtCategoryEdit     = "api/categories/%d/edit/"
	fmtCategoryDelete   = "api/categories/%d/delete/"
	fmtEntryDetails     = "api/entry/%d/details/"
	fmtEntryDelete      = "api/entry/%d/delete/"
	fmtConfirmOrder     = "api/entry/%d/confirm-order/"
	fmtConfirmReceipt   = "api/entry/%d/confirm-reception/"
	headerCSRF          = "X-CSRFToken"
	headerRequestID     = "X-Request-ID"
	headerRequestedWith = "X-Requested-With"
	formCSRF            = "csrfmiddlewaretoken"
)

func entryPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
