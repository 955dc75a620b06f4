package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 文件存储接口
// 房源图片全部是公开资源，只需要上传/转存/删除三个能力
type StorageProvider interface {
	// Upload 上传文件，返回公开访问URL
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)

	// UploadFromURL 从URL下载并转存（经纪人粘贴外链图片时重新托管）
	UploadFromURL(ctx context.Context, sourceURL string, filename string) (url string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, url string) error
}

// ImageFetcher 拉取外链图片字节，不直接落存储
// 向导先把图片收进管线审核，提交时才统一转存
type ImageFetcher interface {
	FetchImage(ctx context.Context, sourceURL string) (data []byte, contentType string, err error)
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	CDNDomain string // CDN域名 (可选)
	BasePath  string // 基础路径前缀
	LocalDir  string // local 模式的落盘目录
	LocalURL  string // local 模式的访问前缀
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg *StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== StorageService ====================

// StorageService 存储服务（包装 StorageProvider，供依赖注入）
type StorageService struct {
	provider StorageProvider
	config   *StorageConfig
}

// NewStorageService 创建存储服务
func NewStorageService(cfg *StorageConfig) (*StorageService, error) {
	provider, err := NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &StorageService{
		provider: provider,
		config:   cfg,
	}, nil
}

// Upload 上传文件
func (s *StorageService) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	return s.provider.Upload(ctx, data, filename, contentType)
}

// UploadFromURL 从URL下载并转存
func (s *StorageService) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	return s.provider.UploadFromURL(ctx, sourceURL, filename)
}

// Delete 删除文件
func (s *StorageService) Delete(ctx context.Context, url string) error {
	return s.provider.Delete(ctx, url)
}

// FetchImage 拉取外链图片，交给调用方校验格式后再决定去留
func (s *StorageService) FetchImage(ctx context.Context, sourceURL string) ([]byte, string, error) {
	return downloadFile(ctx, sourceURL)
}

// ==================== 下载辅助 ====================

// downloadFile 拉取远程文件，带超时和重试
func downloadFile(ctx context.Context, sourceURL string) (data []byte, contentType string, err error) {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2)

	resp, err := client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return nil, "", fmt.Errorf("下载失败: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("下载失败，状态码: %d", resp.StatusCode())
	}

	data = resp.Body()
	contentType = resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = detectContentType(data)
	}
	return data, contentType, nil
}

// detectContentType 按文件头嗅探类型
func detectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// generateKey 生成存储对象名：日期路径 + uuid，避免同名覆盖
func generateKey(basePath, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	datePath := time.Now().Format("2006/01/02")
	if basePath != "" {
		return fmt.Sprintf("%s/%s/%s", basePath, datePath, newFilename)
	}
	return fmt.Sprintf("%s/%s", datePath, newFilename)
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg *StorageConfig) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: cfg.CDNDomain,
		basePath:  cfg.BasePath,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := generateKey(s.basePath, filename)

	if contentType == "" {
		contentType = detectContentType(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %v", err)
	}

	return s.getPublicURL(key), nil
}

func (s *S3Storage) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	data, contentType, err := downloadFile(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, data, filename, contentType)
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key := s.extractKey(url)
	if key == "" {
		return fmt.Errorf("无法解析文件路径")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) getPublicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) extractKey(url string) string {
	if s.cdnDomain != "" && strings.Contains(url, s.cdnDomain) {
		return strings.TrimPrefix(url, fmt.Sprintf("https://%s/", s.cdnDomain))
	}
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	return strings.TrimPrefix(url, prefix)
}

// ==================== 本地磁盘实现 ====================

// LocalStorage 本地磁盘存储（开发环境用）
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(cfg *StorageConfig) (*LocalStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %v", err)
	}
	baseURL := cfg.LocalURL
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := generateKey("", filename)

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入本地文件失败: %v", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *LocalStorage) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	data, contentType, err := downloadFile(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, data, filename, contentType)
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.baseURL+"/")
	if key == "" || key == url {
		return fmt.Errorf("无法解析文件路径")
	}
	return os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
}
