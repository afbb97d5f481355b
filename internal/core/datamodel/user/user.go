package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;size:254;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;size:255;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;size:20;not null;default:employee"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	IsStaff      bool       `gorm:"column:is_staff;default:false"`
	DateJoined   time.Time  `gorm:"column:date_joined;autoCreateTime"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
