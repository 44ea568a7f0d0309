package server

type Meta struct {
	Total   int            `json:"total"`
	Limit   int            `json:"limit,omitempty"`
	DueDays int            `json:"due_days,omitempty"`
	Stats   *WarrantyStats `json:"stats,omitempty"`
}

type Res struct {
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}
