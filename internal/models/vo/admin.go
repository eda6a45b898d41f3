package vo

import "time"

// AdminStats 管理后台概览。
type AdminStats struct {
	TotalMovies  int64 `json:"totalMovies"`
	TotalSeries  int64 `json:"totalSeries"`
	TotalUsers   int64 `json:"totalUsers"`
	TotalRatings int64 `json:"totalRatings"`
}

// PosterUpload 海报直传所需的签名信息，客户端按 Method + Headers 上传到 UploadURL。
type PosterUpload struct {
	UploadURL  string            `json:"uploadUrl"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	ObjectName string            `json:"objectName"`
	PublicURL  string            `json:"publicUrl"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// DeleteResult 删除类接口的统一返回。
type DeleteResult struct {
	Success bool `json:"success"`
}
