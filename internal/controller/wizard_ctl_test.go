package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nhadat_dev_v1/internal/middleware"
	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
	"nhadat_dev_v1/internal/service"
	"nhadat_dev_v1/internal/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试装配 ====================

type wizardTestEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	sessions *wizard.Manager
	fetcher  *stubFetcher
	token    string
}

type noopUploader struct{}

func (noopUploader) Upload(_ context.Context, _ []byte, filename, _ string) (string, error) {
	return "https://cdn.example.com/" + filename, nil
}

// stubFetcher 外链拉取替身，按预置字节应答
type stubFetcher struct {
	data []byte
	err  error
}

func (f *stubFetcher) FetchImage(_ context.Context, _ string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, "image/png", nil
}

// pngHeader 最小可嗅探为 image/png 的字节序列
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func setupWizardEnv(t *testing.T) *wizardTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.PropertyType{}, &model.Listing{}, &model.ListingContact{})

	seeds := []model.PropertyType{
		{
			Slug:     "can-ho",
			Name:     "Căn hộ chung cư",
			SaleMeta: []byte(`["legal_status","direction","bedrooms"]`),
			RentMeta: []byte(`["bedrooms"]`),
		},
		{
			Slug:     "dat",
			Name:     "Đất",
			SaleMeta: []byte(`["legal_status","land_type"]`),
			RentMeta: []byte(`{"available":false,"filters":[]}`),
		},
	}
	for _, pt := range seeds {
		if err := db.Create(&pt).Error; err != nil {
			t.Fatalf("写入种子类型失败: %v", err)
		}
	}

	schemaSvc := service.NewSchemaService(repository.NewPropertyTypeRepository(db))
	listingSvc := service.NewListingService(
		repository.NewListingRepository(db),
		repository.NewContactRepository(db),
		schemaSvc,
		noopUploader{},
	)

	sessions := wizard.NewManager()
	fetcher := &stubFetcher{data: pngHeader}
	wizardCtl := NewWizardController(sessions, schemaSvc, listingSvc, nil, fetcher, wizard.DefaultPolicy())
	catalogCtl := NewCatalogController(schemaSvc)

	r := gin.New()
	r.GET("/api/property-types", catalogCtl.ListPropertyTypes)
	wz := r.Group("/api/wizard", middleware.AuthRequired())
	{
		wz.POST("", wizardCtl.Open)
		wz.GET("/:sid", wizardCtl.GetState)
		wz.PATCH("/:sid/fields", wizardCtl.UpdateFields)
		wz.POST("/:sid/next", wizardCtl.Next)
		wz.POST("/:sid/back", wizardCtl.Back)
		wz.POST("/:sid/goto", wizardCtl.GoTo)
		wz.POST("/:sid/fees", wizardCtl.AddFee)
		wz.DELETE("/:sid/fees/:fee_id", wizardCtl.DeleteFee)
		wz.POST("/:sid/images/from-url", wizardCtl.SelectImagesFromURL)
		wz.POST("/:sid/draft", wizardCtl.SaveDraft)
		wz.POST("/:sid/submit", wizardCtl.Submit)
	}

	token, err := middleware.GenerateAccessToken("owner-1", "a@example.com", "user")
	if err != nil {
		t.Fatalf("生成测试 Token 失败: %v", err)
	}

	return &wizardTestEnv{router: r, db: db, sessions: sessions, fetcher: fetcher, token: token}
}

func (e *wizardTestEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope 标准响应壳
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("响应解析失败: %v (body=%s)", err, w.Body.String())
	}
	return env
}

// openSession 打开会话并返回 session_id
func openSession(t *testing.T, e *wizardTestEnv) string {
	w := e.do(http.MethodPost, "/api/wizard", e.token, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		SessionID string `json:"session_id"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &data)
	if data.SessionID == "" {
		t.Fatal("应返回 session_id")
	}
	return data.SessionID
}

// ==================== 单元测试 ====================

func TestWizardController_RequiresAuth(t *testing.T) {
	e := setupWizardEnv(t)

	w := e.do(http.MethodPost, "/api/wizard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/wizard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWizardController_ForeignSessionNotFound(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	otherToken, _ := middleware.GenerateAccessToken("owner-2", "b@example.com", "user")
	w := e.do(http.MethodGet, "/api/wizard/"+sid, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 本人可见
	w = e.do(http.MethodGet, "/api/wizard/"+sid, e.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWizardController_UpdateFieldsAndNext(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	// 空表单前进被挡
	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/next", e.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 填第一步
	w = e.do(http.MethodPatch, "/api/wizard/"+sid+"/fields", e.token, map[string]interface{}{
		"purpose":          "for_sale",
		"property_type_id": "can-ho",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 现在可以前进
	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/next", e.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data struct {
		CurrentStep string `json:"current_step"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &data)
	assert.Equal(t, "location", data.CurrentStep)
}

func TestWizardController_MutationsRejectedWhileSaving(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	sess, err := e.sessions.Get(sid, "owner-1")
	if err != nil {
		t.Fatalf("取会话失败: %v", err)
	}
	// 模拟保存在途：此时所有修改类接口都应 409
	if err := sess.TryBeginSave(); err != nil {
		t.Fatalf("抢占保存标记失败: %v", err)
	}

	w := e.do(http.MethodPatch, "/api/wizard/"+sid+"/fields", e.token, map[string]interface{}{
		"purpose": "for_sale",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/next", e.token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 只读接口不受影响
	w = e.do(http.MethodGet, "/api/wizard/"+sid, e.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	sess.EndSave()
	w = e.do(http.MethodPatch, "/api/wizard/"+sid+"/fields", e.token, map[string]interface{}{
		"purpose": "for_sale",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWizardController_SelectImagesFromURL(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/images/from-url", e.token, map[string]interface{}{
		"urls": []string{"https://img.example.com/a/can-ho.png"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Images []struct {
			Name string `json:"name"`
		} `json:"images"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &data)
	if assert.Len(t, data.Images, 1) {
		// 文件名取自外链路径
		assert.Equal(t, "can-ho.png", data.Images[0].Name)
	}

	// 拉下来的字节不是图片时整批拒绝
	e.fetcher.data = []byte("<html>not an image</html>")
	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/images/from-url", e.token, map[string]interface{}{
		"urls": []string{"https://img.example.com/fake.png"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 源站挂了返回 502
	e.fetcher.err = errors.New("connection refused")
	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/images/from-url", e.token, map[string]interface{}{
		"urls": []string{"https://img.example.com/down.png"},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestWizardController_GoToUnreachedStep(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/goto", e.token, map[string]string{
		"step": "contact",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardController_Fees(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	// 非法分类
	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/fees", e.token, map[string]interface{}{
		"category":          "insurance",
		"fee_name":          "abc",
		"payment_frequency": "monthly",
		"fee_type":          "flat",
		"amount":            1000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 合法费用
	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/fees", e.token, map[string]interface{}{
		"category":          "parking",
		"fee_name":          "Phí gửi xe",
		"payment_frequency": "monthly",
		"is_required":       "optional",
		"fee_type":          "flat",
		"amount":            120000,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		FeeID string `json:"fee_id"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &data)
	assert.NotEmpty(t, data.FeeID)

	// 删除
	w = e.do(http.MethodDelete, "/api/wizard/"+sid+"/fees/"+data.FeeID, e.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, "/api/wizard/"+sid+"/fees/"+data.FeeID, e.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardController_DraftDestroysSession(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	// 未达到草稿最低要求
	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/draft", e.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.do(http.MethodPatch, "/api/wizard/"+sid+"/fields", e.token, map[string]interface{}{
		"purpose":          "for_sale",
		"property_type_id": "can-ho",
	})

	w = e.do(http.MethodPost, "/api/wizard/"+sid+"/draft", e.token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		ListingID string `json:"listing_id"`
		Status    string `json:"status"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &data)
	assert.Equal(t, "draft", data.Status)
	assert.NotEmpty(t, data.ListingID)

	// 成功后会话销毁，再访问按不存在处理
	w = e.do(http.MethodGet, "/api/wizard/"+sid, e.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, e.sessions.Count())
}

func TestWizardController_SubmitOnlyOnLastStep(t *testing.T) {
	e := setupWizardEnv(t)
	sid := openSession(t, e)

	w := e.do(http.MethodPost, "/api/wizard/"+sid+"/submit", e.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogController_PurposeValidation(t *testing.T) {
	e := setupWizardEnv(t)

	w := e.do(http.MethodGet, "/api/property-types?purpose=buying", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/property-types?purpose=for_rent", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var types []struct {
		Slug string `json:"slug"`
	}
	env := decode(t, w)
	json.Unmarshal(env.Data, &types)
	for _, pt := range types {
		assert.NotEqual(t, "dat", pt.Slug, "土地不可出租")
	}
}
