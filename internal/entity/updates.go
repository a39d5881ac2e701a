package entity

// UserUpdates 用户更新字段
type UserUpdates struct {
	Surnom      *string
	Email       *string
	MotDePasse  *string
	Salt        *string
	CheminImage *string
	ClearImage  bool
	EtatID      *State
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Surnom != nil {
		updates["Surnom"] = *u.Surnom
	}
	if u.Email != nil {
		updates["Email"] = *u.Email
	}
	if u.MotDePasse != nil {
		updates["MotDePasse"] = *u.MotDePasse
	}
	if u.Salt != nil {
		updates["Salt"] = *u.Salt
	}
	if u.ClearImage {
		updates["CheminImage"] = nil
	} else if u.CheminImage != nil {
		updates["CheminImage"] = *u.CheminImage
	}
	if u.EtatID != nil {
		updates["EtatID"] = *u.EtatID
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
