package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"nhadat_dev_v1/internal/controller"
	"nhadat_dev_v1/internal/middleware"

	_ "nhadat_dev_v1/docs"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtl *controller.AuthController,
	catalogCtl *controller.CatalogController,
	wizardCtl *controller.WizardController,
	listingCtl *controller.ListingController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组（公开）
		auth := api.Group("/auth")
		{
			// POST /api/auth/register
			auth.POST("/register", authCtl.Register)
			// POST /api/auth/login
			auth.POST("/login", authCtl.Login)
		}

		// 类型目录（公开，发布页第一步的数据源）
		// GET /api/property-types?purpose=for_sale
		api.GET("/property-types", catalogCtl.ListPropertyTypes)

		// 我的房源（需要登录）
		// GET /api/listings?status=draft&page=1
		api.GET("/listings", middleware.AuthRequired(), listingCtl.MyListings)

		// wizard 发布向导（需要登录）
		wizard := api.Group("/wizard", middleware.AuthRequired())
		{
			// POST /api/wizard （body 可带 edit_listing_id）
			wizard.POST("", wizardCtl.Open)
			wizard.GET("/:sid", wizardCtl.GetState)
			wizard.PATCH("/:sid/fields", wizardCtl.UpdateFields)

			// 步骤导航
			wizard.POST("/:sid/next", wizardCtl.Next)
			wizard.POST("/:sid/back", wizardCtl.Back)
			wizard.POST("/:sid/goto", wizardCtl.GoTo)

			// 费用子编辑器
			wizard.POST("/:sid/fees", wizardCtl.AddFee)
			wizard.PUT("/:sid/fees/:fee_id", wizardCtl.UpdateFee)
			wizard.DELETE("/:sid/fees/:fee_id", wizardCtl.DeleteFee)

			// 图片管线
			wizard.POST("/:sid/images", wizardCtl.SelectImages)
			wizard.POST("/:sid/images/from-url", wizardCtl.SelectImagesFromURL)
			wizard.PUT("/:sid/images/order", wizardCtl.ReorderImages)
			wizard.DELETE("/:sid/images/:index", wizardCtl.RemoveImage)

			// AI 文案
			wizard.POST("/:sid/suggest-content", wizardCtl.SuggestContent)

			// 保存
			wizard.POST("/:sid/draft", wizardCtl.SaveDraft)
			wizard.POST("/:sid/submit", wizardCtl.Submit)
		}
	}
}
