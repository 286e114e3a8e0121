package models

import "time"

type TeamMember struct {
	UID   string `json:"uid" bson:"uid"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Team is a registration team scoped to a single event.
// Members always includes the leader (members[0]). Once Finalized is true
// the roster and drive link are immutable through this API.
type Team struct {
	ID          string       `json:"id" bson:"_id"`
	EventID     string       `json:"event_id" bson:"event_id"`
	Name        string       `json:"name" bson:"name"`
	LeaderUID   string       `json:"leader_uid" bson:"leader_uid"`
	LeaderEmail string       `json:"leader_email" bson:"leader_email"`
	LeaderName  string       `json:"leader_name" bson:"leader_name"`
	Members     []TeamMember `json:"members" bson:"members"`
	DriveLink   string       `json:"drive_link,omitempty" bson:"drive_link,omitempty"`
	Finalized   bool         `json:"finalized" bson:"finalized"`
	PaymentDone bool         `json:"payment_done" bson:"payment_done"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
}

func (t *Team) HasMemberUID(uid string) bool {
	for _, m := range t.Members {
		if m.UID == uid {
			return true
		}
	}
	return false
}

func (t *Team) HasMemberEmail(email string) bool {
	for _, m := range t.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}
