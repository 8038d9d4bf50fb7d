package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/internal/util"
	"nutriquiz_backend/pkg/database"
	"nutriquiz_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Quiz.SessionRetentionHours = 24
	cfg.Quiz.SweepIntervalMinutes = 60
	cfg.Quiz.QuestionCacheMinutes = 10
	return cfg
}

func newQuizService(t *testing.T) (*QuizService, *gorm.DB) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewSessionRepository(db), repository.NewQuestionRepository(db), testConfig(), nil)
	return svc, db
}

func uintPtr(v uint) *uint { return &v }

func TestGetOrCreateSessionCreatesDefault(t *testing.T) {
	svc, _ := newQuizService(t)

	session, err := svc.GetOrCreateSession("sess-new", nil)
	require.NoError(t, err)

	assert.Equal(t, "sess-new", session.SessionID)
	assert.Equal(t, model.SectionBasic, session.CurrentSection)
	assert.Equal(t, 0, session.CurrentStep)
	assert.False(t, session.IsCompleted)
	assert.Nil(t, session.UserID)
	assert.NotNil(t, session.Responses)
}

func TestGetOrCreateSessionRestampsUser(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-1", uintPtr(7))
	require.NoError(t, err)

	// 同一会话匿名再取，归属被清掉
	session, err := svc.GetOrCreateSession("sess-1", nil)
	require.NoError(t, err)
	assert.Nil(t, session.UserID)

	// 另一个用户再取又盖新章
	session, err = svc.GetOrCreateSession("sess-1", uintPtr(9))
	require.NoError(t, err)
	require.NotNil(t, session.UserID)
	assert.Equal(t, uint(9), *session.UserID)
}

func TestSyncProgressForwardOnly(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-fwd", nil)
	require.NoError(t, err)

	// BASIC -> LIFESTYLE 跳档前进允许
	_, err = svc.SyncProgress(SyncRequest{SessionID: "sess-fwd", Section: model.SectionLifestyle, Step: 2}, nil)
	require.NoError(t, err)

	// 退回 GOALS 被拒
	_, err = svc.SyncProgress(SyncRequest{SessionID: "sess-fwd", Section: model.SectionGoals, Step: 0}, nil)
	assert.ErrorIs(t, err, util.ErrSectionRegression)

	// 原地同步允许（步号可以任意变）
	session, err := svc.SyncProgress(SyncRequest{SessionID: "sess-fwd", Section: model.SectionLifestyle, Step: 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.SectionLifestyle, session.CurrentSection)
	assert.Equal(t, 0, session.CurrentStep)
}

func TestSyncProgressUnknownSection(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-bad", nil)
	require.NoError(t, err)

	_, err = svc.SyncProgress(SyncRequest{SessionID: "sess-bad", Section: "WARMUP"}, nil)
	assert.ErrorIs(t, err, util.ErrUnknownSection)
}

func TestSyncProgressMissingSession(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.SyncProgress(SyncRequest{SessionID: "never-created", Section: model.SectionBasic}, nil)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSyncProgressMergesByKey(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-merge", nil)
	require.NoError(t, err)

	_, err = svc.SyncProgress(SyncRequest{
		SessionID: "sess-merge",
		Section:   model.SectionBasic,
		Data: model.ResponseMap{
			"1": json.RawMessage(`"Asha"`),
			"2": json.RawMessage(`"70"`),
		},
	}, nil)
	require.NoError(t, err)

	// 同键整条覆盖，异键保留
	session, err := svc.SyncProgress(SyncRequest{
		SessionID: "sess-merge",
		Section:   model.SectionGoalSelect,
		Data: model.ResponseMap{
			"2": json.RawMessage(`"72"`),
			"3": json.RawMessage(`{"id":9,"label":"Fat Loss"}`),
		},
	}, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `"Asha"`, string(session.Responses["1"]))
	assert.JSONEq(t, `"72"`, string(session.Responses["2"]))
	assert.JSONEq(t, `{"id":9,"label":"Fat Loss"}`, string(session.Responses["3"]))
}

func TestSyncProgressSelectedGoalSticky(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-goal", nil)
	require.NoError(t, err)

	session, err := svc.SyncProgress(SyncRequest{SessionID: "sess-goal", Section: model.SectionGoalSelect, SelectedGoal: "Gut Health"}, nil)
	require.NoError(t, err)
	require.NotNil(t, session.SelectedGoal)
	assert.Equal(t, "Gut Health", *session.SelectedGoal)

	// 后续请求不带目标，已选目标不被清空
	session, err = svc.SyncProgress(SyncRequest{SessionID: "sess-goal", Section: model.SectionGoals}, nil)
	require.NoError(t, err)
	require.NotNil(t, session.SelectedGoal)
	assert.Equal(t, "Gut Health", *session.SelectedGoal)
}

func TestSyncProgressCompletion(t *testing.T) {
	svc, db := newQuizService(t)

	_, err := svc.GetOrCreateSession("sess-done", nil)
	require.NoError(t, err)

	session, err := svc.SyncProgress(SyncRequest{SessionID: "sess-done", Section: model.SectionCompleted, Step: 0}, nil)
	require.NoError(t, err)
	assert.True(t, session.IsCompleted)

	// 完成标记落库且不可逆：原地同步 COMPLETED 仍保持完成态
	var stored model.QuizSession
	require.NoError(t, db.Where("session_id = ?", "sess-done").First(&stored).Error)
	assert.True(t, stored.IsCompleted)
}

func TestDeleteSessionOwnership(t *testing.T) {
	svc, _ := newQuizService(t)

	// 匿名会话：持 ID 即可删除
	_, err := svc.GetOrCreateSession("sess-anon", nil)
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteSession("sess-anon", nil))
	assert.ErrorIs(t, svc.DeleteSession("sess-anon", nil), util.ErrSessionNotFound)

	// 有归属的会话：非本人（含匿名）一律拒绝
	_, err = svc.GetOrCreateSession("sess-owned", uintPtr(7))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteSession("sess-owned", nil), util.ErrNotSessionOwner)
	assert.ErrorIs(t, svc.DeleteSession("sess-owned", uintPtr(8)), util.ErrNotSessionOwner)
	assert.NoError(t, svc.DeleteSession("sess-owned", uintPtr(7)))
}

func TestListQuestionsRequiresGoal(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.ListQuestions(context.Background(), model.SectionGoals, "")
	assert.ErrorIs(t, err, util.ErrGoalRequired)
}

func TestListQuestionsAbsolutizesMedia(t *testing.T) {
	svc, db := newQuizService(t)

	q := &model.Question{
		Section:      model.SectionBasic,
		Type:         model.QuestionGif,
		QuestionText: "Take a breath",
		GifURL:       "/media/breath.gif",
		Options: []model.QuestionOption{
			{Label: "Done", Icon: "/icons/check.svg"},
		},
	}
	require.NoError(t, db.Create(q).Error)

	qs, err := svc.ListQuestions(context.Background(), model.SectionBasic, "")
	require.NoError(t, err)
	require.Len(t, qs, 1)

	assert.Equal(t, "http://localhost:8080/media/breath.gif", qs[0].GifURL)
	require.Len(t, qs[0].Options, 1)
	assert.Equal(t, "http://localhost:8080/icons/check.svg", qs[0].Options[0].Icon)
}

func TestListQuestionsFiltersGoalType(t *testing.T) {
	svc, db := newQuizService(t)

	require.NoError(t, db.Create(&model.Question{Section: model.SectionGoals, GoalType: "Fat Loss", Type: model.QuestionChoice, QuestionText: "q1", StepOrder: 2}).Error)
	require.NoError(t, db.Create(&model.Question{Section: model.SectionGoals, GoalType: "Fat Loss", Type: model.QuestionChoice, QuestionText: "q0", StepOrder: 1}).Error)
	require.NoError(t, db.Create(&model.Question{Section: model.SectionGoals, GoalType: "PCOS", Type: model.QuestionChoice, QuestionText: "other"}).Error)

	qs, err := svc.ListQuestions(context.Background(), model.SectionGoals, "Fat Loss")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	// 按 step_order 升序
	assert.Equal(t, "q0", qs[0].QuestionText)
	assert.Equal(t, "q1", qs[1].QuestionText)
}

func TestCleanupSweepSparesCompletedAndFresh(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	svc := NewCleanupService(sessionRepo, testConfig())

	stale := &model.QuizSession{SessionID: "stale", Responses: model.ResponseMap{}}
	completed := &model.QuizSession{SessionID: "kept-completed", IsCompleted: true, Responses: model.ResponseMap{}}
	fresh := &model.QuizSession{SessionID: "kept-fresh", Responses: model.ResponseMap{}}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(completed).Error)
	require.NoError(t, db.Create(fresh).Error)

	// 把前两条回拨到保留期之外，已完成的那条也过期但必须保留
	expiredAt := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&model.QuizSession{}).Where("session_id IN ?", []string{"stale", "kept-completed"}).Update("created_at", expiredAt).Error)

	deleted, err := svc.SweepOnce()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []model.QuizSession
	require.NoError(t, db.Find(&remaining).Error)
	ids := make([]string, 0, len(remaining))
	for _, s := range remaining {
		ids = append(ids, s.SessionID)
	}
	assert.ElementsMatch(t, []string{"kept-completed", "kept-fresh"}, ids)
}
