package model

import "time"

// Review is one user's review of one movie. The (movie_id, user_id) pair is
// unique: a user reviews a movie at most once.
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	MovieID   int64     `bson:"movie_id" json:"movie_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Rating    int       `bson:"rating" json:"rating"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
