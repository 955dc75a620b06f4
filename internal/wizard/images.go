package wizard

import (
	"context"
	"errors"
	"fmt"
)

// ==================== 图片管线 ====================

var (
	// ErrTooManyImages 选择后总数超过上限，整批拒绝
	ErrTooManyImages = errors.New("图片数量超过上限")
	// ErrImageIndex 下标越界
	ErrImageIndex = errors.New("图片下标无效")
	// ErrBadOrder 重排序列不是合法排列
	ErrBadOrder = errors.New("无效的排序")
)

// ImageFile 待上传的图片：预览元信息与字节内容放在同一个结构里，
// 重排只移动结构体本身，预览顺序和文件顺序不可能脱节
type ImageFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// Uploader 上传传输接口，由存储服务实现
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (url string, err error)
}

// ImagePipeline 上传前的图片管理：选择、预览、排序、移除
// 与真正的上传传输解耦，Upload 时才接触存储服务
type ImagePipeline struct {
	files    []ImageFile
	existing int
	max      int
}

// NewImagePipeline 创建图片管线
func NewImagePipeline(maxImages int) *ImagePipeline {
	return &ImagePipeline{max: maxImages}
}

// SetExistingCount 编辑模式下登记已落库的图片数
// 上限按已有图加新选图的总数计算，不只看本次选择
func (p *ImagePipeline) SetExistingCount(n int) {
	p.existing = n
}

// Count 当前待上传图片数（不含已落库的）
func (p *ImagePipeline) Count() int {
	return len(p.files)
}

// Files 当前文件快照（按展示顺序）
func (p *ImagePipeline) Files() []ImageFile {
	out := make([]ImageFile, len(p.files))
	copy(out, p.files)
	return out
}

// Select 追加一批图片
// 会使总数超上限的选择整批拒绝，数量保持不变
func (p *ImagePipeline) Select(files []ImageFile) error {
	if p.existing+len(p.files)+len(files) > p.max {
		return fmt.Errorf("%w: 最多 %d 张，已有 %d 张，当前 %d 张，本次选择 %d 张",
			ErrTooManyImages, p.max, p.existing, len(p.files), len(files))
	}
	p.files = append(p.files, files...)
	return nil
}

// Remove 按下标移除
func (p *ImagePipeline) Remove(index int) error {
	if index < 0 || index >= len(p.files) {
		return ErrImageIndex
	}
	p.files = append(p.files[:index], p.files[index+1:]...)
	return nil
}

// Reorder 按新顺序重排（拖拽）
// newOrder 必须是 0..n-1 的一个排列
func (p *ImagePipeline) Reorder(newOrder []int) error {
	if len(newOrder) != len(p.files) {
		return ErrBadOrder
	}
	seen := make([]bool, len(p.files))
	for _, idx := range newOrder {
		if idx < 0 || idx >= len(p.files) || seen[idx] {
			return ErrBadOrder
		}
		seen[idx] = true
	}
	reordered := make([]ImageFile, len(p.files))
	for pos, idx := range newOrder {
		reordered[pos] = p.files[idx]
	}
	p.files = reordered
	return nil
}

// Upload 把全部待传图片推给存储服务，返回首图 URL 作为封面引用
// 任何一张失败即中止整批，已传成功的不做清理（图片是增量数据，残留无害）
func (p *ImagePipeline) Upload(ctx context.Context, uploader Uploader, ownerID string) (coverURL string, urls []string, err error) {
	urls = make([]string, 0, len(p.files))
	for i, f := range p.files {
		name := fmt.Sprintf("listings/%s/%02d_%s", ownerID, i, f.Name)
		url, uerr := uploader.Upload(ctx, f.Data, name, f.ContentType)
		if uerr != nil {
			return "", nil, fmt.Errorf("第 %d 张图片上传失败: %w", i+1, uerr)
		}
		urls = append(urls, url)
	}
	if len(urls) > 0 {
		coverURL = urls[0]
	}
	return coverURL, urls, nil
}
