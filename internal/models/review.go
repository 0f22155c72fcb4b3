package models

import "time"

// Review statuses. Submissions start pending and become visible to the
// public read path only once approved.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review represents a customer review awaiting or past moderation
type Review struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewRequest is the public submission payload
type ReviewRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=60"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=1,max=2000"`
}

// EnquiryRequest is the contact form payload relayed to the enquiry webhook
type EnquiryRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=60"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone,omitempty" binding:"omitempty,max=20"`
	CarID   int    `json:"carId,omitempty"`
	Message string `json:"message" binding:"required,min=1,max=4000"`
}
