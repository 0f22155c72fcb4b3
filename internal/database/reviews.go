package database

import (
	"fmt"

	"platinummotors/internal/models"
)

// CreateReview stores a public review submission in pending state
func (d *Database) CreateReview(review *models.Review) error {
	if review.Status == "" {
		review.Status = models.ReviewStatusPending
	}

	result, err := d.db.Exec(
		`INSERT INTO reviews (name, rating, comment, status) VALUES (?, ?, ?, ?)`,
		review.Name, review.Rating, review.Comment, review.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review ID: %w", err)
	}
	review.ID = int(id)

	return nil
}

// GetReviews returns reviews newest-first, optionally filtered by status.
// The public read path always passes ReviewStatusApproved.
func (d *Database) GetReviews(status string) ([]models.Review, error) {
	query := `SELECT id, name, rating, comment, status, created_at FROM reviews`
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.Name, &review.Rating,
			&review.Comment, &review.Status, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// UpdateReviewStatus moderates a review (approve or reject)
func (d *Database) UpdateReviewStatus(id int, status string) error {
	if status != models.ReviewStatusApproved && status != models.ReviewStatusRejected {
		return fmt.Errorf("invalid review status: %s", status)
	}

	result, err := d.db.Exec(`UPDATE reviews SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}

// DeleteReview removes a review through the admin path
func (d *Database) DeleteReview(id int) error {
	result, err := d.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}
