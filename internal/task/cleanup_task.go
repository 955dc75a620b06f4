package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"nhadat_dev_v1/internal/repository"
	"nhadat_dev_v1/internal/wizard"
)

// ==================== CleanupTask 清理任务 ====================

// CleanupTask 定时回收闲置向导会话、下架长期未动的草稿
type CleanupTask struct {
	listingRepo repository.ListingRepository
	sessions    *wizard.Manager
	cron        *cron.Cron

	sessionMaxIdle time.Duration
	draftMaxAge    time.Duration
}

// NewCleanupTask 创建清理任务
func NewCleanupTask(listingRepo repository.ListingRepository, sessions *wizard.Manager) *CleanupTask {
	return &CleanupTask{
		listingRepo:    listingRepo,
		sessions:       sessions,
		cron:           cron.New(cron.WithSeconds()),
		sessionMaxIdle: 2 * time.Hour,       // 向导会话闲置上限
		draftMaxAge:    90 * 24 * time.Hour, // 草稿保留期
	}
}

// SetLimits 设置清理阈值
func (t *CleanupTask) SetLimits(sessionMaxIdle, draftMaxAge time.Duration) {
	t.sessionMaxIdle = sessionMaxIdle
	t.draftMaxAge = draftMaxAge
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 定时策略：会话每 10 分钟扫一次
	_, err := t.cron.AddFunc("0 */10 * * * *", t.sweepSessions)
	if err != nil {
		log.Fatalf("[CleanupTask] 无法启动会话清理: %v", err)
	}

	// 定时策略：草稿每天凌晨 3 点扫一次
	_, err = t.cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.expireDrafts(ctx)
	})
	if err != nil {
		log.Fatalf("[CleanupTask] 无法启动草稿清理: %v", err)
	}

	t.cron.Start()
	log.Println("[CleanupTask] 清理任务已启动 (会话每10分钟 / 草稿每天)")
}

// Stop 停止任务
func (t *CleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[CleanupTask] 已停止")
}

// sweepSessions 回收闲置会话
func (t *CleanupTask) sweepSessions() {
	if n := t.sessions.SweepIdle(t.sessionMaxIdle); n > 0 {
		log.Printf("[CleanupTask] 回收 %d 个闲置向导会话", n)
	}
}

// expireDrafts 下架过期草稿
func (t *CleanupTask) expireDrafts(ctx context.Context) {
	cutoff := time.Now().Add(-t.draftMaxAge)
	drafts, err := t.listingRepo.FindStaleDrafts(ctx, cutoff)
	if err != nil {
		log.Printf("[CleanupTask] 查询过期草稿失败: %v", err)
		return
	}
	if len(drafts) == 0 {
		return
	}

	log.Printf("[CleanupTask] 发现 %d 个过期草稿", len(drafts))
	for _, d := range drafts {
		if err := t.listingRepo.MarkInactive(ctx, d.ID); err != nil {
			log.Printf("[CleanupTask] 下架草稿 %s 失败: %v", d.ID, err)
		}
	}
}
