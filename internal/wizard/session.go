package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ==================== 向导会话 ====================

var (
	// ErrSessionNotFound 会话不存在或不属于当前用户（故意不区分）
	ErrSessionNotFound = errors.New("向导会话不存在")
	// ErrSaveInFlight 已有一次保存在进行中，拒绝重入
	ErrSaveInFlight = errors.New("正在保存，请稍候")
)

// SchemaSource 向导需要的 schema 裁决能力，由 SchemaService 实现
type SchemaSource interface {
	// IsEligible 类型在目的下是否可选
	IsEligible(purpose, propertyTypeID string) bool
	// RequiresLegalStep 类型是否带法律状态/朝向步骤
	RequiresLegalStep(purpose, propertyTypeID string) bool
}

// Session 一次打开的向导实例：表单状态 + 步骤推进器 + 图片管线
// 约定单写者（同一会话同一时刻只有一个浏览器页面在驱动），
// 但身处 HTTP 服务内，仍用互斥锁串行化访问
type Session struct {
	ID      string
	OwnerID string

	State  *DraftState
	Images *ImagePipeline

	seq        *Sequencer
	policy     Policy
	saving     bool
	lastActive time.Time
	mu         sync.Mutex
}

// NewSession 创建向导会话，初始停在第一步
func NewSession(ownerID string, schema SchemaSource, policy Policy) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		policy:     policy,
		lastActive: time.Now(),
	}
	s.State = NewDraftState(schema.IsEligible)
	s.Images = NewImagePipeline(policy.MaxImages)
	s.seq = NewSequencer(
		func(step StepID) error {
			return ValidateStep(step, s.State, s.Images.Count(), s.policy)
		},
		func(step StepID) bool {
			if step != StepLegalDirection {
				return true
			}
			return schema.RequiresLegalStep(s.State.Purpose, s.State.PropertyTypeID)
		},
	)
	return s
}

// Lock 串行化会话访问，调用方负责 Unlock
func (s *Session) Lock() {
	s.mu.Lock()
	s.lastActive = time.Now()
}

// Unlock 释放会话
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// LockForEdit 修改类操作的入口：保存在途时拒绝加锁
// 保存流程在持有标记后会脱离会话锁读取表单，期间不能有写入
func (s *Session) LockForEdit() error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.lastActive = time.Now()
	return nil
}

// Sequencer 步骤推进器
func (s *Session) Sequencer() *Sequencer {
	return s.seq
}

// Policy 当前校验策略
func (s *Session) Policy() Policy {
	return s.policy
}

// Validate 对指定步骤求值校验谓词
func (s *Session) Validate(step StepID) error {
	return ValidateStep(step, s.State, s.Images.Count(), s.policy)
}

// TryBeginSave 抢占保存标记；已有保存在途时返回 ErrSaveInFlight
// 保存期间"提交/存草稿"按钮在语义上是禁用的
func (s *Session) TryBeginSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInFlight
	}
	s.saving = true
	return nil
}

// EndSave 释放保存标记
func (s *Session) EndSave() {
	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
}

// IdleSince 最近一次访问时间
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// ==================== 会话管理器 ====================

// Manager 内存中的会话表
// 会话随提交/存草稿成功而销毁；用户弃置的会话由定时清扫回收。
// 保存回调晚于会话销毁到达时，Get 返回 ErrSessionNotFound，调用方按防御处理
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Put 登记会话
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// Get 按 ID 取会话并校验归属
// 他人会话一律按"不存在"处理，不泄露任何信息
func (m *Manager) Get(id, ownerID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Destroy 销毁会话（提交/存草稿成功后调用）
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count 当前会话数
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepIdle 回收闲置超过 maxIdle 的会话，返回回收数
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
