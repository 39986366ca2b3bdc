package service

import "github.com/d60-Lab/inkwell/internal/model"

// CanView 单篇读取的可见性判定。viewerID 为空表示未登录。
// 未发布的文章对任何人（包括作者）都不经 slug 路由可见；
// 作者编辑草稿走按内部 id 的鉴权路径。
func CanView(p *model.Post, viewerID string) bool {
	return p.Published && (p.IsPublic || viewerID != "")
}

// Listable 列表页（首页、分类页）的收录谓词，比 CanView 更严格
func Listable(p *model.Post) bool {
	return p.Published && p.IsPublic
}
