package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"    json:"email"`
	Phone        string    `gorm:"size:32"                          json:"phone,omitempty"`
	Img          string    `json:"img,omitempty"`
	Roles        []Role    `gorm:"many2many:user_roles;"            json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) RoleNames() []roles.Role {
	out := make([]roles.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, roles.Normalize(r.Name))
	}
	return out
}

func (u *User) HasRole(want roles.Role) bool {
	want = roles.Normalize(string(want))
	for _, r := range u.Roles {
		if roles.Normalize(r.Name) == want {
			return true
		}
	}
	return false
}

type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `gorm:"many2many:role_permissions;"  json:"permissions,omitempty"`
}

type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    *uint  `gorm:"index"                         json:"parent_id,omitempty"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

type Diary struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"         json:"id"`
	Title      string         `gorm:"size:200;not null"                json:"title"`
	Content    string         `gorm:"type:text;not null"               json:"content"`
	UserID     uint           `gorm:"index;not null"                   json:"user_id"`
	CategoryID *uint          `gorm:"index"                            json:"category_id,omitempty"`
	Visibility string         `gorm:"size:16;not null;default:private" json:"visibility"`
	Tags       []Tag          `gorm:"many2many:diary_tags;"            json:"tags"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index"                            json:"-"`
}

const (
	TagTypeSystem = "system"
	TagTypeUser   = "user"
)

type Tag struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"size:64;not null"         json:"name"`
	Type   string `gorm:"size:16;not null"         json:"type"`
	UserID *uint  `gorm:"index"                    json:"user_id,omitempty"`
}

// Emotion levels reported by the sentiment model.
const (
	EmotionNegative = 0
	EmotionPositive = 1
)

type SentimentAnalysis struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DiaryID      uint      `gorm:"index;not null"           json:"diary_id"`
	UserID       uint      `gorm:"index;not null"           json:"user_id"`
	Sentiment    string    `gorm:"size:16;not null"         json:"sentiment"`
	Score        float64   `gorm:"not null"                 json:"sentiment_score"`
	EmotionLevel int       `gorm:"not null"                 json:"emotion_level"`
	AnalyzedAt   time.Time `gorm:"index;not null"           json:"analysis_time"`
}

type EmotionKnowledge struct {
	ID                 uint    `gorm:"primaryKey;autoIncrement" json:"id"                  yaml:"-"`
	Category           string  `gorm:"index;size:64;not null"   json:"emotion_category"    yaml:"category"`
	Intensity          float64 `gorm:"not null"                 json:"emotion_intensity"   yaml:"intensity"`
	RecommendedAction  string  `json:"recommended_action"       yaml:"recommended_action"`
	PsychologicalBasis string  `json:"psychological_basis"      yaml:"psychological_basis"`
	ContentType        string  `gorm:"size:32"                  json:"content_type"        yaml:"content_type"`
	ContentURL         string  `json:"content_url"              yaml:"content_url"`
	TargetNeeds        string  `json:"target_needs"             yaml:"target_needs"`
	Description        string  `json:"description"              yaml:"description"`
}

func All() []any {
	return []any{
		&Permission{}, &Role{}, &User{},
		&Category{}, &Tag{}, &Diary{},
		&SentimentAnalysis{}, &EmotionKnowledge{},
	}
}
