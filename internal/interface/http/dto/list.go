package dto

// IDsRequest selects records for a bulk operation.
type IDsRequest struct {
	IDs []int64 `json:"ids" example:"1,2,3"`
}

// LinkRequest names the authors or categories to link to a book.
type LinkRequest struct {
	IDs []int64 `json:"ids" example:"4,7"`
}

// ReconcileRequest is one save of the bulk category manager: categories to
// file the book under and link ids to remove.
type ReconcileRequest struct {
	Add    []int64 `json:"add"`
	Remove []int64 `json:"remove"`
}

// DeletedResponse echoes the removed ids.
type DeletedResponse struct {
	IDs []int64 `json:"ids"`
}
