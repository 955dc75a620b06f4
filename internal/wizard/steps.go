package wizard

import (
	"errors"
	"fmt"
)

// ==================== 步骤定义 ====================

// StepID 步骤标识
// 用稳定的命名标识而不是裸下标：插入/去掉步骤不会错位跳转逻辑
type StepID string

const (
	StepTypePurpose    StepID = "type_purpose"    // 目的与类型
	StepLocation       StepID = "location"        // 位置
	StepLegalDirection StepID = "legal_direction" // 法律状态/朝向（条件步骤）
	StepPhysical       StepID = "physical"        // 基础物理属性
	StepAmenities      StepID = "amenities"       // 配套设施
	StepPrice          StepID = "price"           // 价格
	StepFees           StepID = "fees"            // 附加费用
	StepMediaContent   StepID = "media_content"   // 图片与文案
	StepContact        StepID = "contact"         // 联系方式
)

// StepOrder 向导步骤的固定顺序
var StepOrder = []StepID{
	StepTypePurpose,
	StepLocation,
	StepLegalDirection,
	StepPhysical,
	StepAmenities,
	StepPrice,
	StepFees,
	StepMediaContent,
	StepContact,
}

// ==================== 错误 ====================

var (
	// ErrStepInvalid 当前步骤未通过校验，禁止前进
	ErrStepInvalid = errors.New("当前步骤必填项未完成")
	// ErrStepUnreachable 跳转目标超出已到达过的范围
	ErrStepUnreachable = errors.New("该步骤尚不可跳转")
	// ErrNotLastStep 只有最后一步才能提交
	ErrNotLastStep = errors.New("请完成所有步骤后再提交")
)

// ==================== 步骤推进器 ====================

// ValidateFunc 某步骤的校验谓词，非 nil 错误表示不可前进
type ValidateFunc func(step StepID) error

// ApplicableFunc 判断条件步骤当前是否适用（不适用则双向跳过）
type ApplicableFunc func(step StepID) bool

// Sequencer 步骤推进器
// 只管理"当前在哪一步、能否前进"，不持有表单数据
type Sequencer struct {
	steps      []StepID
	current    int
	maxReached int
	validate   ValidateFunc
	applicable ApplicableFunc
}

// NewSequencer 创建推进器，初始停在第一步
func NewSequencer(validate ValidateFunc, applicable ApplicableFunc) *Sequencer {
	return &Sequencer{
		steps:      StepOrder,
		validate:   validate,
		applicable: applicable,
	}
}

// Current 当前步骤
func (sq *Sequencer) Current() StepID {
	return sq.steps[sq.current]
}

// IsLast 是否停在最后一步
func (sq *Sequencer) IsLast() bool {
	return sq.current == len(sq.steps)-1
}

// stepApplicable 条件步骤是否适用
func (sq *Sequencer) stepApplicable(idx int) bool {
	if sq.applicable == nil {
		return true
	}
	return sq.applicable(sq.steps[idx])
}

// Next 前进一步
// 当前步骤未通过校验时原地不动并返回错误；
// 目标是条件步骤且当前类型不适用时再多跳一步（对用户不可见）
func (sq *Sequencer) Next() error {
	if err := sq.validate(sq.Current()); err != nil {
		return fmt.Errorf("%w: %v", ErrStepInvalid, err)
	}
	if sq.IsLast() {
		return nil
	}
	next := sq.current + 1
	for next < len(sq.steps)-1 && !sq.stepApplicable(next) {
		next++
	}
	sq.current = next
	if sq.current > sq.maxReached {
		sq.maxReached = sq.current
	}
	return nil
}

// Back 后退一步，不做校验；反向应用同样的跳过规则
func (sq *Sequencer) Back() {
	if sq.current == 0 {
		return
	}
	prev := sq.current - 1
	for prev > 0 && !sq.stepApplicable(prev) {
		prev--
	}
	sq.current = prev
}

// GoTo 直接跳到某一步（进度条点击）
// 只允许跳到已到达过的范围内，途中步骤不再重新校验
func (sq *Sequencer) GoTo(step StepID) error {
	idx := sq.indexOf(step)
	if idx < 0 {
		return fmt.Errorf("未知步骤: %s", step)
	}
	if idx > sq.maxReached {
		return ErrStepUnreachable
	}
	if !sq.stepApplicable(idx) {
		return ErrStepUnreachable
	}
	sq.current = idx
	return nil
}

// Progress 当前进度（第几个适用步骤 / 适用步骤总数）
func (sq *Sequencer) Progress() (position, total int) {
	for i := range sq.steps {
		if !sq.stepApplicable(i) {
			continue
		}
		total++
		if i <= sq.current {
			position = total
		}
	}
	return position, total
}

// ApplicableSteps 当前适用的步骤列表（渲染进度指示器用）
func (sq *Sequencer) ApplicableSteps() []StepID {
	out := make([]StepID, 0, len(sq.steps))
	for i, s := range sq.steps {
		if sq.stepApplicable(i) {
			out = append(out, s)
		}
	}
	return out
}

func (sq *Sequencer) indexOf(step StepID) int {
	for i, s := range sq.steps {
		if s == step {
			return i
		}
	}
	return -1
}
