package model

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Columns that never leave the store in a caller-facing read.
var SensitiveColumns = []string{"password", "refresh_token", "watch_history"}

var ErrAvatarMissing = errors.New("account avatar must not be empty")

type Account struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"`
	Username     string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName     string         `gorm:"type:varchar(255);not null;index"`
	Avatar       string         `gorm:"type:varchar(1024);not null"`
	CoverImage   string         `gorm:"type:varchar(1024);not null;default:''"`
	Password     string         `gorm:"type:varchar(255);not null"`
	RefreshToken string         `gorm:"type:varchar(512)"`
	WatchHistory []string       `gorm:"serializer:json;type:json"`
	CreatedAt    time.Time      `gorm:"index;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"` // 软删除标记
}

// TableName 定义映射表名
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate normalises the username and hashes the password so that the
// unique index sees the case-folded form regardless of the caller.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	a.Username = NormalizeUsername(a.Username)
	if strings.TrimSpace(a.Avatar) == "" {
		return ErrAvatarMissing
	}
	if a.Password != "" && !isBcryptHash(a.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		a.Password = string(hashed)
	}
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (a *Account) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(plain)) == nil
}

// View returns the caller-facing projection of the account.
func (a *Account) View() *AccountView {
	return &AccountView{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FullName:   a.FullName,
		Avatar:     a.Avatar,
		CoverImage: a.CoverImage,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AccountView has no password, refresh token or watch history by construction.
type AccountView struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='账号表'").
		AutoMigrate(&Account{})
}
