package utils

import (
	"net/http"
	"strings"
)

// 房源图片接受的格式
var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// DetectImageType 按文件头嗅探图片类型
// 浏览器上报的 Content-Type 不可信，以字节内容为准
func DetectImageType(data []byte) string {
	return http.DetectContentType(data)
}

// IsSupportedImage 是否为可接受的图片格式
func IsSupportedImage(data []byte) bool {
	return supportedImageTypes[DetectImageType(data)]
}

// NormalizeImageContentType 归一化图片 Content-Type
// 上报值缺失或不是图片时退回嗅探结果
func NormalizeImageContentType(reported string, data []byte) string {
	if strings.HasPrefix(reported, "image/") {
		return reported
	}
	return DetectImageType(data)
}
