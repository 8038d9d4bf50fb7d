package service

import (
	"time"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/pkg/logger"
	"nutriquiz_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// CleanupService 定期清理超过保留期的未完成会话。
// 已完成的会话永久保留，删除语句自身校验 is_completed，
// 到期边界上刚完成的会话不会被误删。
type CleanupService struct {
	sessionRepo *repository.SessionRepository
	retention   time.Duration
	interval    time.Duration
	stop        chan struct{}
}

func NewCleanupService(sessionRepo *repository.SessionRepository, cfg *config.Config) *CleanupService {
	return &CleanupService{
		sessionRepo: sessionRepo,
		retention:   time.Duration(cfg.Quiz.SessionRetentionHours) * time.Hour,
		interval:    time.Duration(cfg.Quiz.SweepIntervalMinutes) * time.Minute,
		stop:        make(chan struct{}),
	}
}

// SweepOnce 执行一轮清理，返回删除条数
func (s *CleanupService) SweepOnce() (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	return s.sessionRepo.DeleteExpired(cutoff)
}

// Run 启动后台清理循环，阻塞直至 Stop
func (s *CleanupService) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := s.SweepOnce()
			if err != nil {
				logger.Log.Error("session sweep failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				monitoring.SessionSweepCounter.Add(float64(deleted))
				logger.Log.Info("expired quiz sessions removed", zap.Int64("count", deleted))
			}
		case <-s.stop:
			return
		}
	}
}

func (s *CleanupService) Stop() {
	close(s.stop)
}
