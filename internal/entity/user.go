package entity

import "time"

// Role is the grade of an account. Values match the seeded Grade rows.
type Role uint

const (
	RoleSuperAdmin   Role = 1
	RoleAdmin        Role = 2
	RoleStandardUser Role = 3
)

// IsValid reports whether r is one of the seeded grades.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleStandardUser:
		return true
	default:
		return false
	}
}

// IsAdminTier reports whether r grants access to administrative listings.
func (r Role) IsAdminTier() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "SuperAdmin"
	case RoleAdmin:
		return "Admin"
	case RoleStandardUser:
		return "Utilisateur"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of an account. Values match the seeded Etat rows.
type State uint

const (
	StateActive  State = 1
	StateDeleted State = 2
	StateBlocked State = 3
	// StateSold exists in the reference data but no operation sets it.
	StateSold State = 4
)

func (s State) IsValid() bool {
	switch s {
	case StateActive, StateDeleted, StateBlocked, StateSold:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	switch s {
	case StateActive:
		return "Actif"
	case StateDeleted:
		return "Supprimer"
	case StateBlocked:
		return "Bloquer"
	case StateSold:
		return "Vendu"
	default:
		return "unknown"
	}
}

// DbGrade is the role reference table.
type DbGrade struct {
	ID  Role   `gorm:"column:GradeID;primarykey" json:"GradeID"`
	Nom string `gorm:"column:Nom;type:varchar(100);uniqueIndex;not null" json:"Nom"`
}

func (DbGrade) TableName() string {
	return "grade"
}

// DbEtat is the account state reference table.
type DbEtat struct {
	ID  State  `gorm:"column:EtatID;primarykey" json:"EtatID"`
	Nom string `gorm:"column:Nom;type:varchar(100);uniqueIndex;not null" json:"Nom"`
}

func (DbEtat) TableName() string {
	return "etat"
}

// DbUser represents a persisted account. Email carries no unique index because
// soft-deleted rows share sentinel addresses; uniqueness among live rows is
// checked by the account service.
type DbUser struct {
	ID          uint      `gorm:"column:UtilisateurID;primarykey" json:"UtilisateurID"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`
	Surnom      string    `gorm:"column:Surnom;type:varchar(255);uniqueIndex;not null" json:"Surnom"`
	Email       string    `gorm:"column:Email;type:varchar(255);index;not null" json:"Email"`
	MotDePasse  string    `gorm:"column:MotDePasse;type:varchar(255);not null" json:"-"`
	Salt        string    `gorm:"column:Salt;type:varchar(255);not null" json:"-"`
	CheminImage *string   `gorm:"column:CheminImage;type:varchar(512)" json:"CheminImage"`
	GradeID     Role      `gorm:"column:GradeID;index;not null" json:"GradeID"`
	EtatID      State     `gorm:"column:EtatID;index;not null" json:"EtatID"`
	Grade       *DbGrade  `gorm:"foreignKey:GradeID;references:GradeID" json:"Grade,omitempty"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "utilisateur"
}

// AvatarPath returns the stored avatar reference or an empty string.
func (u *DbUser) AvatarPath() string {
	if u == nil || u.CheminImage == nil {
		return ""
	}
	return *u.CheminImage
}

// UserSummary is the public projection of an account. It never carries the
// password hash or salt.
type UserSummary struct {
	ID          uint       `json:"UtilisateurID"`
	Surnom      string     `json:"Surnom"`
	Email       string     `json:"Email"`
	CheminImage *string    `json:"CheminImage"`
	GradeID     Role       `json:"GradeID"`
	EtatID      State      `json:"EtatID"`
	Grade       *GradeName `json:"Grade,omitempty"`
	CreatedAt   time.Time  `json:"CreatedAt"`
	UpdatedAt   time.Time  `json:"UpdatedAt"`
}

// GradeName is the joined role name returned by the admin listing.
type GradeName struct {
	Nom string `json:"Nom"`
}

// UserCriteria filters the user listing by role and state.
type UserCriteria struct {
	GradeID Role
	EtatID  State
}
