package models

import "time"

// HealthResponse is returned by the health check endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// OffersResponse wraps the offer list served by the API
type OffersResponse struct {
	Count    int            `json:"count"`
	Artifact string         `json:"artifact"`
	Offers   []ProductOffer `json:"offers"`
}

// ErrorResponse is the generic API error shape
type ErrorResponse struct {
	Error string `json:"error"`
}

// ImageInfo describes one image found while inventorying a message file.
type ImageInfo struct {
	Filename    string `json:"filename"`
	SizeBytes   int    `json:"size_bytes"`
	ContentType string `json:"content_type"`
	SourceType  string `json:"source_type"`
	ContentID   string `json:"cid,omitempty"`
	Extension   string `json:"file_extension"`
	Embedded    bool   `json:"is_embedded"`
}

// MessageInventory is the per-file result of the image inventory scan.
type MessageInventory struct {
	Filename       string      `json:"filename"`
	Subject        string      `json:"subject"`
	Sender         string      `json:"sender"`
	Date           string      `json:"date"`
	HasHTML        bool        `json:"has_html"`
	Images         []ImageInfo `json:"images"`
	TotalImages    int         `json:"total_images"`
	TotalImageSize int         `json:"total_image_size"`
	Error          string      `json:"error_message,omitempty"`
}
