package dto

import "time"

type DocumentResponse struct {
	ID        int64     `json:"id"`
	DocType   string    `json:"doc_type"`
	FileName  string    `json:"file_name"`
	Status    string    `json:"status"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentsListResponse struct {
	Items []DocumentResponse `json:"items"`
}
