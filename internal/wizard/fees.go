package wizard

import (
	"errors"

	"github.com/google/uuid"

	"nhadat_dev_v1/internal/model"
)

// ==================== 费用子编辑器 ====================

// ErrFeeNotFound 按 ID 找不到费用
var ErrFeeNotFound = errors.New("费用不存在")

// AddFee 新增一条费用，校验通过后分配 ID 并追加
// 新增与编辑共用 model.Fee.Validate 这一条校验路径
func (s *DraftState) AddFee(fee model.Fee) (string, error) {
	if err := fee.Validate(); err != nil {
		return "", err
	}
	fee.ID = uuid.NewString()
	s.Fees = append(s.Fees, fee)
	return fee.ID, nil
}

// UpdateFee 编辑已有费用，保留原 ID
func (s *DraftState) UpdateFee(id string, fee model.Fee) error {
	if err := fee.Validate(); err != nil {
		return err
	}
	for i := range s.Fees {
		if s.Fees[i].ID == id {
			fee.ID = id
			s.Fees[i] = fee
			return nil
		}
	}
	return ErrFeeNotFound
}

// DeleteFee 按 ID 删除费用
func (s *DraftState) DeleteFee(id string) error {
	for i := range s.Fees {
		if s.Fees[i].ID == id {
			s.Fees = append(s.Fees[:i], s.Fees[i+1:]...)
			return nil
		}
	}
	return ErrFeeNotFound
}

// FeeByID 按 ID 查找费用（编辑对话框回填用）
func (s *DraftState) FeeByID(id string) (model.Fee, bool) {
	for _, f := range s.Fees {
		if f.ID == id {
			return f, true
		}
	}
	return model.Fee{}, false
}
