package models

// DetectionResult is the body of a successful detection response.
type DetectionResult struct {
	FaceDetected bool `json:"face_detected"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type DetectionRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}
