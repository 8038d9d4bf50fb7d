package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/internal/util"
	"nutriquiz_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	cfg          *config.Config
	rdb          *redis.Client
}

func NewQuizService(sessionRepo *repository.SessionRepository, questionRepo *repository.QuestionRepository, cfg *config.Config, rdb *redis.Client) *QuizService {
	return &QuizService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		cfg:          cfg,
		rdb:          rdb,
	}
}

// SyncRequest 进度同步请求体
type SyncRequest struct {
	SessionID    string            `json:"sessionId" binding:"required"`
	Section      model.Section     `json:"section" binding:"required"`
	Step         int               `json:"step" binding:"gte=0"`
	Data         model.ResponseMap `json:"data"`
	SelectedGoal string            `json:"selectedGoal"`
}

// GetOrCreateSession 按ID取会话，不存在则按初始状态新建。
// 每次调用都用当前认证状态重新盖章用户关联，匿名调用会把
// 既有关联清掉，与线上行为保持一致。
func (s *QuizService) GetOrCreateSession(sessionID string, callerID *uint) (*model.QuizSession, error) {
	session, err := s.sessionRepo.FindBySessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = &model.QuizSession{
			SessionID:      sessionID,
			CurrentSection: model.SectionBasic,
			CurrentStep:    0,
			Responses:      model.ResponseMap{},
		}
	} else if err != nil {
		return nil, err
	}

	session.UserID = callerID

	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SyncProgress 合并一次增量提交：校验环节只进不退，按键覆盖答案映射
func (s *QuizService) SyncProgress(req SyncRequest, callerID *uint) (*model.QuizSession, error) {
	session, err := s.sessionRepo.FindBySessionID(req.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	session.UserID = callerID

	if !req.Section.Valid() {
		return nil, util.ErrUnknownSection
	}
	if req.Section.Rank() < session.CurrentSection.Rank() {
		return nil, util.ErrSectionRegression
	}

	session.CurrentSection = req.Section
	session.CurrentStep = req.Step
	if req.SelectedGoal != "" {
		goal := req.SelectedGoal
		session.SelectedGoal = &goal
	}

	// 按键整条覆盖，不做字段级深合并
	if req.Data != nil {
		if session.Responses == nil {
			session.Responses = model.ResponseMap{}
		}
		for key, value := range req.Data {
			session.Responses[key] = value
		}
	}

	if req.Section == model.SectionCompleted {
		session.IsCompleted = true
	}

	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession 删除会话：有归属的仅限本人，匿名会话持ID者即可删除
func (s *QuizService) DeleteSession(sessionID string, callerID *uint) error {
	session, err := s.sessionRepo.FindBySessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	if session.UserID != nil && (callerID == nil || *callerID != *session.UserID) {
		return util.ErrNotSessionOwner
	}

	return s.sessionRepo.DeleteBySessionID(sessionID)
}

// GetUserCompletedSession 返回用户最近一次完成的会话，没有时返回 nil
func (s *QuizService) GetUserCompletedSession(userID uint) (*model.QuizSession, error) {
	return s.sessionRepo.FindLatestCompletedByUser(userID)
}

// ListCompletedSessions 管理端分页查看已完成的测评
func (s *QuizService) ListCompletedSessions(page, limit int) ([]model.QuizSession, int64, error) {
	return s.sessionRepo.ListCompleted(page, limit)
}

// ListQuestions 取某环节的题目列表，GOALS 环节必须指定目标类别。
// 题目属只读参考数据，结果带 TTL 缓存在 Redis。
func (s *QuizService) ListQuestions(ctx context.Context, section model.Section, goal string) ([]model.Question, error) {
	if section == model.SectionGoals && goal == "" {
		return nil, util.ErrGoalRequired
	}

	cacheKey := fmt.Sprintf("quiz:questions:%s:%s", section, goal)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var qs []model.Question
			if err := json.Unmarshal(cached, &qs); err == nil {
				return qs, nil
			}
		}
	}

	qs, err := s.questionRepo.ListBySection(section, goal)
	if err != nil {
		return nil, err
	}

	// 媒体地址统一转绝对路径后再下发
	for i := range qs {
		qs[i].GifURL = util.MakeAbsoluteURL(s.cfg.Server.BaseURL, qs[i].GifURL)
		for j := range qs[i].Options {
			qs[i].Options[j].Icon = util.MakeAbsoluteURL(s.cfg.Server.BaseURL, qs[i].Options[j].Icon)
		}
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(qs); err == nil {
			ttl := time.Duration(s.cfg.Quiz.QuestionCacheMinutes) * time.Minute
			if err := s.rdb.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
				logger.Log.Warn("question cache write failed", zap.Error(err))
			}
		}
	}

	return qs, nil
}
