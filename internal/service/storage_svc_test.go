package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func newLocalStorage(t *testing.T) *StorageService {
	svc, err := NewStorageService(&StorageConfig{
		Provider: "local",
		LocalDir: t.TempDir(),
		LocalURL: "http://localhost:8080/uploads",
	})
	if err != nil {
		t.Fatalf("初始化本地存储失败: %v", err)
	}
	return svc
}

func TestNewStorageService_InvalidProvider(t *testing.T) {
	_, err := NewStorageService(&StorageConfig{Provider: "ftp"})
	if err == nil {
		t.Fatal("未知存储提供者应报错")
	}
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	svc := newLocalStorage(t)
	ctx := context.Background()

	url, err := svc.Upload(ctx, []byte("fake image bytes"), "photo.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Fatalf("URL 前缀不对: %s", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("应保留扩展名: %s", url)
	}

	if err := svc.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestLocalStorage_KeyHasNoCollision(t *testing.T) {
	svc := newLocalStorage(t)
	ctx := context.Background()

	// 同名文件重复上传不能互相覆盖
	url1, err := svc.Upload(ctx, []byte("a"), "photo.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	url2, err := svc.Upload(ctx, []byte("b"), "photo.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url1 == url2 {
		t.Fatalf("同名上传不应覆盖: %s", url1)
	}
}

func TestStorageService_FetchImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer srv.Close()

	svc := newLocalStorage(t)
	ctx := context.Background()

	data, contentType, err := svc.FetchImage(ctx, srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("FetchImage() error = %v", err)
	}
	if !bytes.Equal(data, png) {
		t.Fatal("拉取的字节与源不一致")
	}
	if contentType != "image/png" {
		t.Fatalf("Content-Type 不对: %s", contentType)
	}

	// 非 200 一律按失败处理
	if _, _, err := svc.FetchImage(ctx, srv.URL+"/gone.png"); err == nil {
		t.Fatal("404 源应报错")
	}
}

func TestDetectContentType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	if ct := detectContentType(png); ct != "image/png" {
		t.Fatalf("PNG 嗅探失败: %s", ct)
	}
}

func TestGenerateKey(t *testing.T) {
	key := generateKey("nhadat", "căn hộ.jpg")
	if !strings.HasPrefix(key, "nhadat/") {
		t.Fatalf("应带基础路径前缀: %s", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("应保留扩展名: %s", key)
	}
	// 原文件名不进入对象名
	if strings.Contains(key, "căn hộ") {
		t.Fatalf("对象名不应包含原文件名: %s", key)
	}
}

func TestS3Storage_Init(t *testing.T) {
	if os.Getenv("AWS_BUCKET") == "" {
		t.Skip("跳过: 需要设置 AWS_BUCKET 环境变量")
	}

	svc, err := NewStorageService(&StorageConfig{
		Provider:  "s3",
		Bucket:    os.Getenv("AWS_BUCKET"),
		Region:    os.Getenv("AWS_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		t.Fatalf("S3 初始化失败: %v", err)
	}
	if svc == nil {
		t.Fatal("NewStorageService() 返回 nil")
	}
}
