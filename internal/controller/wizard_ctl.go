package controller

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"nhadat_dev_v1/internal/api/dto"
	"nhadat_dev_v1/internal/middleware"
	"nhadat_dev_v1/internal/service"
	"nhadat_dev_v1/internal/wizard"
	"nhadat_dev_v1/pkg/utils"
)

// ==================== 控制器 ====================

// WizardController 发布向导控制器
// 每个打开的向导页面对应一个服务端会话，所有操作都以会话为载体
type WizardController struct {
	sessions *wizard.Manager
	schema   *service.SchemaService
	listings *service.ListingService
	ai       *service.AIService
	fetcher  service.ImageFetcher
	policy   wizard.Policy
}

func NewWizardController(
	sessions *wizard.Manager,
	schema *service.SchemaService,
	listings *service.ListingService,
	ai *service.AIService,
	fetcher service.ImageFetcher,
	policy wizard.Policy,
) *WizardController {
	return &WizardController{
		sessions: sessions,
		schema:   schema,
		listings: listings,
		ai:       ai,
		fetcher:  fetcher,
		policy:   policy,
	}
}

// session 取当前用户的会话，查不到时已写好响应
func (ctrl *WizardController) session(c *gin.Context) (*wizard.Session, bool) {
	sess, err := ctrl.sessions.Get(c.Param("sid"), middleware.CurrentOwnerID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "向导会话不存在",
		})
		return nil, false
	}
	return sess, true
}

// lockForEdit 修改类接口统一入口；保存在途时返回 409，由调用方直接结束
func (ctrl *WizardController) lockForEdit(c *gin.Context, sess *wizard.Session) bool {
	if err := sess.LockForEdit(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
		return false
	}
	return true
}

// snapshot 当前会话快照
func snapshot(sess *wizard.Session) dto.WizardStateResponse {
	seq := sess.Sequencer()
	position, total := seq.Progress()

	steps := seq.ApplicableSteps()
	stepNames := make([]string, len(steps))
	for i, s := range steps {
		stepNames[i] = string(s)
	}

	files := sess.Images.Files()
	images := make([]dto.ImageVO, len(files))
	for i, f := range files {
		images[i] = dto.ImageVO{Index: i, Name: f.Name, ContentType: f.ContentType, Size: f.Size}
	}

	resp := dto.WizardStateResponse{
		SessionID:   sess.ID,
		CurrentStep: string(seq.Current()),
		Steps:       stepNames,
		Progress:    dto.ProgressVO{Position: position, Total: total},
		State:       sess.State,
		Images:      images,
		Editing:     sess.State.IsEditing(),
	}
	if err := sess.Validate(seq.Current()); err != nil {
		resp.StepError = err.Error()
	}
	return resp
}

// ==================== 会话生命周期 ====================

// Open 打开向导会话
// @Summary 打开发布向导（可选编辑模式）
// @Tags Wizard
// @Accept json
// @Produce json
// @Param body body dto.OpenWizardRequest false "编辑模式参数"
// @Success 201 {object} dto.WizardStateResponse
// @Router /api/wizard [post]
func (ctrl *WizardController) Open(c *gin.Context) {
	ownerID := middleware.CurrentOwnerID(c)

	var req dto.OpenWizardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	sess := wizard.NewSession(ownerID, ctrl.schema, ctrl.policy)

	if req.EditListingID != "" {
		state, err := ctrl.listings.LoadForEdit(c.Request.Context(), req.EditListingID, ownerID)
		if err != nil {
			// 他人房源与不存在一视同仁
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": "房源不存在",
			})
			return
		}
		sess.State = state
		sess.Images.SetExistingCount(state.ExistingImageCount)
	}

	ctrl.sessions.Put(sess)

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// GetState 会话快照
// @Summary 获取向导当前状态
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid} [get]
func (ctrl *WizardController) GetState(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// ==================== 字段更新 ====================

// UpdateFields 部分字段更新
// @Summary 更新表单字段（不触发校验）
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param body body dto.UpdateFieldsRequest true "更新内容"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/fields [patch]
func (ctrl *WizardController) UpdateFields(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	st := sess.State
	if req.Purpose != nil {
		st.SetPurpose(*req.Purpose)
	}
	if req.PropertyTypeID != nil {
		st.SetPropertyType(*req.PropertyTypeID)
	}
	if req.Location != nil {
		applyLocation(st, req.Location)
	}
	if req.Area != nil {
		st.Area = *req.Area
	}
	for key, value := range req.Attributes {
		st.SetAttribute(key, value)
	}
	if req.Furnishing != nil {
		st.Furnishing = *req.Furnishing
	}
	if req.Amenities != nil {
		st.Amenities = req.Amenities
	}
	if req.Price != nil {
		if req.Price.Amount != nil {
			st.Price.Amount = *req.Price.Amount
		}
		if req.Price.Unit != nil {
			st.Price.Unit = *req.Price.Unit
		}
	}
	if req.Title != nil {
		st.Content.Title = *req.Title
	}
	if req.Description != nil {
		st.Content.Description = *req.Description
	}
	if req.ProminentFeatures != nil {
		st.Content.ProminentFeatures = req.ProminentFeatures
	}
	if req.Contact != nil {
		if req.Contact.Name != nil {
			st.Contact.Name = *req.Contact.Name
		}
		if req.Contact.Phone != nil {
			st.Contact.Phone = *req.Contact.Phone
		}
		if req.Contact.Email != nil {
			st.Contact.Email = *req.Contact.Email
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

func applyLocation(st *wizard.DraftState, loc *dto.LocationDTO) {
	if loc.Province != nil {
		st.Location.Province = *loc.Province
	}
	if loc.District != nil {
		st.Location.District = *loc.District
	}
	if loc.Ward != nil {
		st.Location.Ward = *loc.Ward
	}
	if loc.Street != nil {
		st.Location.Street = *loc.Street
	}
	if loc.ProjectName != nil {
		st.Location.ProjectName = *loc.ProjectName
	}
	if loc.Latitude != nil {
		st.Location.Latitude = loc.Latitude
	}
	if loc.Longitude != nil {
		st.Location.Longitude = loc.Longitude
	}
}

// ==================== 步骤导航 ====================

// Next 前进一步
// @Summary 前进到下一步（当前步骤校验不过则原地不动）
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/next [post]
func (ctrl *WizardController) Next(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}
	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Sequencer().Next(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
			"data":    snapshot(sess),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// Back 后退一步
// @Summary 后退（不校验）
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/back [post]
func (ctrl *WizardController) Back(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}
	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	sess.Sequencer().Back()

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// GoTo 跳转步骤
// @Summary 进度条点击跳转（仅限已到达过的步骤）
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param body body dto.GoToStepRequest true "目标步骤"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/goto [post]
func (ctrl *WizardController) GoTo(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.GoToStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Sequencer().GoTo(wizard.StepID(req.Step)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// ==================== 费用子编辑器 ====================

// AddFee 新增费用
// @Summary 新增一条附加费用
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param body body dto.FeeRequest true "费用内容"
// @Success 201 {object} map[string]interface{}
// @Router /api/wizard/{sid}/fees [post]
func (ctrl *WizardController) AddFee(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.FeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	id, err := sess.State.AddFee(req.ToFee())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"fee_id": id},
	})
}

// UpdateFee 编辑费用
// @Summary 编辑费用（保留原ID）
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param fee_id path string true "费用ID"
// @Param body body dto.FeeRequest true "费用内容"
// @Success 200 {object} map[string]interface{}
// @Router /api/wizard/{sid}/fees/{fee_id} [put]
func (ctrl *WizardController) UpdateFee(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.FeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.State.UpdateFee(c.Param("fee_id"), req.ToFee()); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, wizard.ErrFeeNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// DeleteFee 删除费用
// @Summary 删除费用
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Param fee_id path string true "费用ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/wizard/{sid}/fees/{fee_id} [delete]
func (ctrl *WizardController) DeleteFee(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}
	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.State.DeleteFee(c.Param("fee_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// ==================== 图片管线 ====================

// maxImageBytes 单张图片大小上限
const maxImageBytes = 10 << 20

// SelectImages 选择图片（multipart）
// @Summary 追加图片；超出总数上限整批拒绝
// @Tags Wizard
// @Accept multipart/form-data
// @Param sid path string true "会话ID"
// @Param files formData file true "图片文件"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/images [post]
func (ctrl *WizardController) SelectImages(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	var files []wizard.ImageFile
	for _, fh := range form.File["files"] {
		if fh.Size > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "图片过大: " + fh.Filename,
			})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "读取文件失败: " + err.Error(),
			})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "读取文件失败: " + err.Error(),
			})
			return
		}
		if !utils.IsSupportedImage(data) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "不支持的图片格式: " + fh.Filename,
			})
			return
		}
		files = append(files, wizard.ImageFile{
			Name:        fh.Filename,
			ContentType: utils.NormalizeImageContentType(fh.Header.Get("Content-Type"), data),
			Size:        fh.Size,
			Data:        data,
		})
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Images.Select(files); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// SelectImagesFromURL 粘贴外链图片
// 服务端拉取后与本地上传走同一条管线，上限、排序、转存规则完全一致
// @Summary 按外链追加图片
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Param data body dto.SelectImagesFromURLRequest true "外链列表"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/images/from-url [post]
func (ctrl *WizardController) SelectImagesFromURL(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	if ctrl.fetcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": "外链转存未启用",
		})
		return
	}

	var req dto.SelectImagesFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	var files []wizard.ImageFile
	for _, src := range req.URLs {
		data, reported, err := ctrl.fetcher.FetchImage(c.Request.Context(), src)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"code":    502,
				"message": "拉取图片失败: " + err.Error(),
			})
			return
		}
		if int64(len(data)) > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "图片过大: " + src,
			})
			return
		}
		if !utils.IsSupportedImage(data) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "不支持的图片格式: " + src,
			})
			return
		}
		files = append(files, wizard.ImageFile{
			Name:        imageNameFromURL(src),
			ContentType: utils.NormalizeImageContentType(reported, data),
			Size:        int64(len(data)),
			Data:        data,
		})
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Images.Select(files); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// imageNameFromURL 从外链提取文件名，取不到时给个兜底
func imageNameFromURL(src string) string {
	u, err := url.Parse(src)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "image"
	}
	return path.Base(u.Path)
}

// RemoveImage 移除图片
// @Summary 按下标移除图片
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Param index path int true "下标"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/images/{index} [delete]
func (ctrl *WizardController) RemoveImage(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的下标",
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Images.Remove(index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// ReorderImages 重排图片
// @Summary 拖拽重排图片顺序
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param body body dto.ReorderImagesRequest true "新顺序"
// @Success 200 {object} dto.WizardStateResponse
// @Router /api/wizard/{sid}/images/order [put]
func (ctrl *WizardController) ReorderImages(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if !ctrl.lockForEdit(c, sess) {
		return
	}
	defer sess.Unlock()

	if err := sess.Images.Reorder(req.Order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    snapshot(sess),
	})
}

// ==================== 保存 ====================

// SaveDraft 存草稿
// @Summary 任意步骤存草稿（绕过所有分步校验）
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Success 200 {object} dto.SaveResultResponse
// @Router /api/wizard/{sid}/draft [post]
func (ctrl *WizardController) SaveDraft(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	// 保存期间禁止重入
	if err := sess.TryBeginSave(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
		return
	}
	defer sess.EndSave()

	listingID, err := ctrl.listings.SaveDraft(c.Request.Context(), sess.OwnerID, sess.State)
	if err != nil {
		ctrl.writeSaveError(c, err)
		return
	}

	// 会话用完即弃，消费方页面随后跳走
	ctrl.sessions.Destroy(sess.ID)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.SaveResultResponse{ListingID: listingID, Status: "draft"},
	})
}

// Submit 提交审核
// @Summary 最后一步提交（强校验 + 先传图后落库）
// @Tags Wizard
// @Param sid path string true "会话ID"
// @Success 200 {object} dto.SaveResultResponse
// @Router /api/wizard/{sid}/submit [post]
func (ctrl *WizardController) Submit(c *gin.Context) {
	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	if err := sess.TryBeginSave(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
		return
	}
	defer sess.EndSave()

	// 提交只能发生在最后一步，且最后一步必须通过校验
	seq := sess.Sequencer()
	if !seq.IsLast() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": wizard.ErrNotLastStep.Error(),
		})
		return
	}
	if err := sess.Validate(seq.Current()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	listingID, err := ctrl.listings.Submit(c.Request.Context(), sess.OwnerID, sess.State, sess.Images)
	if err != nil {
		ctrl.writeSaveError(c, err)
		return
	}

	ctrl.sessions.Destroy(sess.ID)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.SaveResultResponse{ListingID: listingID, Status: "pending_approval"},
	})
}

// SuggestContent AI 生成文案
// @Summary 根据已填字段生成标题/描述草稿
// @Tags Wizard
// @Accept json
// @Param sid path string true "会话ID"
// @Param body body dto.SuggestContentRequest false "补充指令"
// @Success 200 {object} dto.SuggestContentResponse
// @Router /api/wizard/{sid}/suggest-content [post]
func (ctrl *WizardController) SuggestContent(c *gin.Context) {
	if !ctrl.ai.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": "文案生成服务未配置",
		})
		return
	}

	sess, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req dto.SuggestContentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	sess.Lock()
	st := sess.State
	if st.Purpose == "" || st.PropertyTypeID == "" {
		sess.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请先选择交易目的和房产类型",
		})
		return
	}
	typeName := st.PropertyTypeID
	if types, err := ctrl.schema.EligiblePropertyTypes(c.Request.Context(), st.Purpose); err == nil {
		for i := range types {
			if types[i].Slug == st.PropertyTypeID {
				typeName = types[i].Name
				break
			}
		}
	}
	// 复制一份快照，生成期间不占锁
	stCopy := *st
	sess.Unlock()

	content, err := ctrl.ai.SuggestListingContent(c.Request.Context(), &stCopy, typeName, req.Instruction)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.SuggestContentResponse{
			Title:       content.Title,
			Description: content.Description,
			Highlights:  content.Highlights,
		},
	})
}

// writeSaveError 把保存错误映射为响应
// 半程写失败要带上已写成功的房源ID，提示用户重试
func (ctrl *WizardController) writeSaveError(c *gin.Context, err error) {
	var partial *service.PartialWriteError
	if errors.As(err, &partial) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":       500,
			"message":    partial.Error(),
			"listing_id": partial.ListingID,
			"retryable":  true,
		})
		return
	}
	if errors.Is(err, service.ErrDraftMinimum) ||
		errors.Is(err, service.ErrSubmitNeedsImage) ||
		errors.Is(err, wizard.ErrTooManyImages) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    500,
		"message": "保存失败: " + err.Error(),
	})
}
