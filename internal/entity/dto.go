package entity

import "time"

// ToSummary converts a persisted account into its public projection.
func (u *DbUser) ToSummary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	summary := UserSummary{
		ID:          u.ID,
		Surnom:      u.Surnom,
		Email:       u.Email,
		CheminImage: u.CheminImage,
		GradeID:     u.GradeID,
		EtatID:      u.EtatID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Grade != nil {
		summary.Grade = &GradeName{Nom: u.Grade.Nom}
	}
	return summary
}

// UsersToSummaries converts a slice of DbUser to UserSummary.
func UsersToSummaries(users []DbUser) []UserSummary {
	summaries := make([]UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].ToSummary()
	}
	return summaries
}

// LoginRequest is the JSON body of POST /login.
type LoginRequest struct {
	Surnom     string `json:"surnom"`
	MotDePasse string `json:"motDePasse"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChangeStateRequest is the JSON body of the state-change routes.
type ChangeStateRequest struct {
	UserID  uint  `json:"userId"`
	NewEtat State `json:"newEtat"`
}

// DeleteByHandleRequest is the JSON body of the legacy hard-delete route.
type DeleteByHandleRequest struct {
	Surnom string `json:"surnom"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserMessageResponse acknowledges a mutation and returns the updated account.
type UserMessageResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}
