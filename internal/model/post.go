package model

import "time"

// Post 文章主体。slug 与 author_id 创建后不可变更。
// content 为富文本编辑器产出的标记文本，按不透明字符串存储。
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Excerpt   *string   `gorm:"type:varchar(512)" json:"excerpt"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null" json:"author_id"`
	Published bool      `gorm:"not null;default:false;index:idx_post_listing" json:"published"`
	IsPublic  bool      `gorm:"not null;default:false;index:idx_post_listing" json:"is_public"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }
