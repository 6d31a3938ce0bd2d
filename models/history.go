package models

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
	NextPage     *int `json:"nextPage"`
	PrevPage     *int `json:"prevPage"`
}

type HistoryMeta struct {
	Sort      string `json:"sort,omitempty"`
	Order     string `json:"order,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HistoryPage is the /ordenes/historial envelope.
type HistoryPage struct {
	Success    bool        `json:"success"`
	Data       []Order     `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Meta       HistoryMeta `json:"meta"`
	Error      string      `json:"error,omitempty"`
}
