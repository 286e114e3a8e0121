package models

import "time"

type User struct {
	UID       string    `json:"uid" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	College   string    `json:"college,omitempty" bson:"college,omitempty"`
	Branch    string    `json:"branch,omitempty" bson:"branch,omitempty"`
	Year      int       `json:"year,omitempty" bson:"year,omitempty"`
	TeamID    string    `json:"team_id,omitempty" bson:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
