package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// ==================== Mock 实现 ====================

type mockUploader struct {
	uploadFn func(ctx context.Context, data []byte, filename, contentType string) (string, error)
	calls    []string
}

func (m *mockUploader) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	m.calls = append(m.calls, filename)
	if m.uploadFn != nil {
		return m.uploadFn(ctx, data, filename, contentType)
	}
	return "https://cdn.example.com/" + filename, nil
}

func imageNamed(name string) ImageFile {
	return ImageFile{Name: name, ContentType: "image/jpeg", Size: 1024, Data: []byte(name)}
}

// ==================== 单元测试 ====================

func TestImagePipeline_SelectOverLimitRejectsWholeBatch(t *testing.T) {
	p := NewImagePipeline(10)

	first := make([]ImageFile, 8)
	for i := range first {
		first[i] = imageNamed(fmt.Sprintf("a%d.jpg", i))
	}
	if err := p.Select(first); err != nil {
		t.Fatalf("8 张应接受: %v", err)
	}

	// 8 + 3 > 10, 整批拒绝而不是收下前 2 张
	batch := []ImageFile{imageNamed("b1.jpg"), imageNamed("b2.jpg"), imageNamed("b3.jpg")}
	if err := p.Select(batch); !errors.Is(err, ErrTooManyImages) {
		t.Fatalf("超限应返回 ErrTooManyImages, 实际 %v", err)
	}
	if p.Count() != 8 {
		t.Fatalf("拒绝后数量应不变, 实际 %d", p.Count())
	}

	// 恰好补到上限可以
	if err := p.Select([]ImageFile{imageNamed("b1.jpg"), imageNamed("b2.jpg")}); err != nil {
		t.Fatalf("补到上限应接受: %v", err)
	}
}

func TestImagePipeline_SelectCountsExistingMedia(t *testing.T) {
	p := NewImagePipeline(10)
	p.SetExistingCount(8)

	// 已落库 8 张，再选 3 张超限
	batch := []ImageFile{imageNamed("n1.jpg"), imageNamed("n2.jpg"), imageNamed("n3.jpg")}
	if err := p.Select(batch); !errors.Is(err, ErrTooManyImages) {
		t.Fatalf("已有图应计入上限, 实际 %v", err)
	}
	if p.Count() != 0 {
		t.Fatalf("拒绝后不应收下任何图, 实际 %d", p.Count())
	}

	// 8 + 2 = 10 恰好到上限
	if err := p.Select([]ImageFile{imageNamed("n1.jpg"), imageNamed("n2.jpg")}); err != nil {
		t.Fatalf("补到上限应接受: %v", err)
	}
}

func TestImagePipeline_Remove(t *testing.T) {
	p := NewImagePipeline(10)
	p.Select([]ImageFile{imageNamed("a.jpg"), imageNamed("b.jpg"), imageNamed("c.jpg")})

	if err := p.Remove(1); err != nil {
		t.Fatalf("移除失败: %v", err)
	}

	files := p.Files()
	if len(files) != 2 || files[0].Name != "a.jpg" || files[1].Name != "c.jpg" {
		t.Fatalf("移除后顺序不对: %+v", files)
	}

	if err := p.Remove(5); !errors.Is(err, ErrImageIndex) {
		t.Fatalf("越界应返回 ErrImageIndex, 实际 %v", err)
	}
}

func TestImagePipeline_Reorder(t *testing.T) {
	p := NewImagePipeline(10)
	p.Select([]ImageFile{imageNamed("a.jpg"), imageNamed("b.jpg"), imageNamed("c.jpg")})

	if err := p.Reorder([]int{2, 0, 1}); err != nil {
		t.Fatalf("重排失败: %v", err)
	}
	files := p.Files()
	if files[0].Name != "c.jpg" || files[1].Name != "a.jpg" || files[2].Name != "b.jpg" {
		t.Fatalf("重排结果不对: %+v", files)
	}
}

func TestImagePipeline_ReorderRejectsNonPermutation(t *testing.T) {
	p := NewImagePipeline(10)
	p.Select([]ImageFile{imageNamed("a.jpg"), imageNamed("b.jpg"), imageNamed("c.jpg")})

	cases := [][]int{
		{0, 1},       // 长度不符
		{0, 1, 1},    // 重复
		{0, 1, 3},    // 越界
		{0, -1, 2},   // 负数
		{0, 1, 2, 3}, // 过长
	}
	for _, order := range cases {
		if err := p.Reorder(order); !errors.Is(err, ErrBadOrder) {
			t.Fatalf("顺序 %v 应返回 ErrBadOrder, 实际 %v", order, err)
		}
	}

	// 拒绝后原顺序保持
	if p.Files()[0].Name != "a.jpg" {
		t.Fatal("拒绝后应保持原顺序")
	}
}

func TestImagePipeline_UploadOrderAndCover(t *testing.T) {
	p := NewImagePipeline(10)
	p.Select([]ImageFile{imageNamed("x.jpg"), imageNamed("y.jpg")})
	p.Reorder([]int{1, 0})

	up := &mockUploader{}
	cover, urls, err := p.Upload(context.Background(), up, "owner-1")
	if err != nil {
		t.Fatalf("上传失败: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("期望 2 个 URL, 实际 %d", len(urls))
	}
	// 重排后的第一张成为封面
	if cover != urls[0] {
		t.Fatalf("封面应是首图, cover=%s urls[0]=%s", cover, urls[0])
	}
	if up.calls[0] != "listings/owner-1/00_y.jpg" {
		t.Fatalf("上传命名不对: %v", up.calls)
	}
}

func TestImagePipeline_UploadFailureAborts(t *testing.T) {
	p := NewImagePipeline(10)
	p.Select([]ImageFile{imageNamed("a.jpg"), imageNamed("b.jpg"), imageNamed("c.jpg")})

	boom := errors.New("s3 不可用")
	up := &mockUploader{
		uploadFn: func(_ context.Context, _ []byte, filename, _ string) (string, error) {
			if filename == "listings/o/01_b.jpg" {
				return "", boom
			}
			return "https://cdn.example.com/" + filename, nil
		},
	}

	_, _, err := p.Upload(context.Background(), up, "o")
	if err == nil {
		t.Fatal("中途失败应中止整批")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("应能解包出底层错误: %v", err)
	}
	// 第三张不应再尝试
	if len(up.calls) != 2 {
		t.Fatalf("失败后应停止, 实际调用 %d 次", len(up.calls))
	}
}
