package model

// PostCategory 文章-分类关联行，无独立状态。
// 每次提交分类选择时整组删除重建，不做增量 diff。
// idx_post_category_pair = (post_id, category_id)
type PostCategory struct {
	PostID     string `gorm:"primaryKey;type:varchar(36);index:idx_post_category_pair,unique" json:"post_id"`
	CategoryID string `gorm:"primaryKey;type:varchar(36);index:idx_post_category_pair,unique;index:idx_post_category_cat" json:"category_id"`
}

func (PostCategory) TableName() string { return "post_categories" }
