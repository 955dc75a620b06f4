package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"nhadat_dev_v1/internal/controller"
	"nhadat_dev_v1/internal/middleware"
	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
	"nhadat_dev_v1/internal/router"
	"nhadat_dev_v1/internal/service"
	"nhadat_dev_v1/internal/task"
	"nhadat_dev_v1/internal/wizard"
	"nhadat_dev_v1/pkg/database"
)

// @title Nhadat Listing API
// @version 1.0
// @description 房源发布向导服务端 API
// @BasePath /api
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Auth, deps.Controllers.Catalog, deps.Controllers.Wizard, deps.Controllers.Listing)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Sessions    *wizard.Manager
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Listing      repository.ListingRepository
	Contact      repository.ContactRepository
	PropertyType repository.PropertyTypeRepository
	Account      repository.AccountRepository
}

// Services 服务集合
type Services struct {
	Schema  *service.SchemaService
	Listing *service.ListingService
	Storage *service.StorageService
	AI      *service.AIService
	Auth    *service.AuthService
}

// Controllers 控制器集合
type Controllers struct {
	Auth    *controller.AuthController
	Catalog *controller.CatalogController
	Wizard  *controller.WizardController
	Listing *controller.ListingController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=nhadat password=nhadat dbname=nhadat port=5432 sslmode=disable")

	db := database.InitDB(dsn,
		// Account
		&model.Account{},
		// Catalog
		&model.PropertyType{},
		// Listing
		&model.Listing{}, &model.ListingContact{},
	)

	// 类型目录种子数据
	if err := database.SeedPropertyTypes(context.Background(), repository.NewPropertyTypeRepository(db)); err != nil {
		log.Fatalf("种子数据写入失败: %v", err)
	}

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Listing:      repository.NewListingRepository(db),
		Contact:      repository.NewContactRepository(db),
		PropertyType: repository.NewPropertyTypeRepository(db),
		Account:      repository.NewAccountRepository(db),
	}

	// -------- 鉴权配置 --------
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		middleware.SetJWTConfig(&middleware.JWTConfig{
			SecretKey:      secret,
			AccessTokenTTL: 24 * time.Hour,
			Issuer:         "nhadat",
		})
	}

	// -------- 基础服务 --------
	storageSvc := initStorageService()
	schemaSvc := service.NewSchemaService(repos.PropertyType)

	// AI 文案生成按需开启
	var aiSvc *service.AIService
	if apiKey := getEnv("GEMINI_API_KEY", ""); apiKey != "" {
		aiSvc = service.NewAIService(apiKey, getEnv("GEMINI_MODEL", ""))
	}

	// -------- 业务服务 --------
	services := &Services{
		Schema:  schemaSvc,
		Storage: storageSvc,
		AI:      aiSvc,
		Auth:    service.NewAuthService(repos.Account),
		Listing: service.NewListingService(repos.Listing, repos.Contact, schemaSvc, storageSvc),
	}

	// -------- 向导会话 --------
	sessions := wizard.NewManager()
	policy := initPolicy()

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:    controller.NewAuthController(services.Auth),
		Catalog: controller.NewCatalogController(services.Schema),
		Wizard:  controller.NewWizardController(sessions, services.Schema, services.Listing, services.AI, services.Storage, policy),
		Listing: controller.NewListingController(services.Listing),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Sessions:    sessions,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "nhadat"),
		LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./uploads"),
		LocalURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:8080/uploads"),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storageSvc
}

// initPolicy 读取向导策略配置
func initPolicy() wizard.Policy {
	policy := wizard.DefaultPolicy()
	if v := getEnv("WIZARD_MIN_DESCRIPTION", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Fatalf("WIZARD_MIN_DESCRIPTION 配置无效: %q", v)
		}
		policy.MinDescriptionLen = n
	}
	return policy
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cleanupTask := task.NewCleanupTask(deps.Repos.Listing, deps.Sessions)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
