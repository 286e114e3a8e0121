package models

import "time"

// Event describes a registrable event and the rules its teams are
// validated against. Fee is in paise; zero together with RequiresPayment=false
// means a free event.
type Event struct {
	ID                string    `json:"id" bson:"_id"`
	Title             string    `json:"title" bson:"title"`
	Description       string    `json:"description,omitempty" bson:"description,omitempty"`
	MinTeamSize       int       `json:"min_team_size" bson:"min_team_size"`
	MaxTeamSize       int       `json:"max_team_size" bson:"max_team_size"`
	RequiresDriveLink bool      `json:"requires_drive_link" bson:"requires_drive_link"`
	RequiresPayment   bool      `json:"requires_payment" bson:"requires_payment"`
	Fee               int64     `json:"fee" bson:"fee"`
	PosterKey         *string   `json:"-" bson:"poster_key,omitempty"`
	PosterURL         *string   `json:"poster_url,omitempty" bson:"-"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}
