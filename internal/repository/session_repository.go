package repository

import (
	"errors"
	"time"

	"nutriquiz_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) FindBySessionID(sessionID string) (*model.QuizSession, error) {
	var s model.QuizSession
	err := r.DB.Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindCompletedBySessionID 只查找已完成的会话
func (r *SessionRepository) FindCompletedBySessionID(sessionID string) (*model.QuizSession, error) {
	var s model.QuizSession
	err := r.DB.Where("session_id = ? AND is_completed = ?", sessionID, true).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindLatestCompletedByUser 查找用户最近一次完成的会话，没有时返回 nil
func (r *SessionRepository) FindLatestCompletedByUser(userID uint) (*model.QuizSession, error) {
	var s model.QuizSession
	err := r.DB.Where("user_id = ? AND is_completed = ?", userID, true).
		Order("updated_at desc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Save(s *model.QuizSession) error {
	return r.DB.Save(s).Error
}

func (r *SessionRepository) DeleteBySessionID(sessionID string) error {
	return r.DB.Unscoped().Where("session_id = ?", sessionID).Delete(&model.QuizSession{}).Error
}

// ListCompleted 供管理端分页查看已完成的测评
func (r *SessionRepository) ListCompleted(page, limit int) ([]model.QuizSession, int64, error) {
	var ss []model.QuizSession
	var total int64
	query := r.DB.Model(&model.QuizSession{}).Where("is_completed = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("updated_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

// DeleteExpired 清除超过保留期且未完成的会话，删除条件里带上
// is_completed 以免误删刚好在到期边界完成的会话。
func (r *SessionRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	res := r.DB.Unscoped().
		Where("is_completed = ? AND created_at < ?", false, cutoff).
		Delete(&model.QuizSession{})
	return res.RowsAffected, res.Error
}
