package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportService(t *testing.T) (*ReportService, *gorm.DB) {
	db := newTestDB(t)
	svc := NewReportService(
		repository.NewSessionRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewChartRepository(db),
		repository.NewUserRepository(db),
		testConfig(),
	)
	return svc, db
}

func floatPtr(v float64) *float64 { return &v }

func TestAssessmentTagBuckets(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{-5, "Critical Imbalance"},
		{40, "Critical Imbalance"},
		{40.5, "Moderate Imbalance"},
		{79.9, "Moderate Imbalance"},
		{80.1, "Minimum Imbalance"},
		{100, "Minimum Imbalance"},
	}
	for _, tt := range tests {
		tag := assessmentTag(tt.score)
		require.NotNil(t, tag, "score %v", tt.score)
		assert.Equal(t, tt.want, *tag, "score %v", tt.score)
	}

	// 恰好 80 落在分档缝隙里，不归任何档位
	assert.Nil(t, assessmentTag(80))
	assert.Nil(t, assessmentTag(100.5))
}

func TestComputeBMR(t *testing.T) {
	assert.Nil(t, computeBMR(nil))
	assert.Nil(t, computeBMR(&model.User{Gender: model.GenderMale}))
	assert.Nil(t, computeBMR(&model.User{Gender: model.GenderUnset, Weight: 70}))

	male := computeBMR(&model.User{Gender: model.GenderMale, Weight: 70})
	require.NotNil(t, male)
	assert.Equal(t, 1540, *male)

	// 历史数据里性别大小写不统一
	mixed := computeBMR(&model.User{Gender: "Male", Weight: 70})
	require.NotNil(t, mixed)
	assert.Equal(t, 1540, *mixed)

	female := computeBMR(&model.User{Gender: model.GenderFemale, Weight: 60})
	require.NotNil(t, female)
	assert.Equal(t, 1200, *female)
}

func TestAggregateResponsesSectionsAndHiz(t *testing.T) {
	questions := map[uint]*model.Question{
		1: {Section: model.SectionGoals},
		2: {Section: model.SectionGoals},
		3: {Section: model.SectionLifestyle},
		4: {Section: model.SectionLifestyle},
	}

	responses := model.ResponseMap{
		// GOALS 两题，分值一数字一字符串
		"1": json.RawMessage(`{"id":11,"score":3,"hizTag":"HIZ1","hizValue":"Cravings"}`),
		"2": json.RawMessage(`{"id":21,"value":[{"id":22,"score":"2","hizTag":"HIZ1","hizValue":"Cravings"},{"id":23,"score":1,"hizTag":"HIZ2","hizValue":"Bloating"}]}`),
		// LIFESTYLE 两题各带活动系数，后出现的覆盖先出现的
		"3": json.RawMessage(`{"id":31,"score":4,"activityScore":1.2}`),
		"4": json.RawMessage(`{"id":41,"score":6,"activityScore":1.55}`),
		// 标量答案不参与计分
		"5": json.RawMessage(`"72"`),
	}

	agg := aggregateResponses(responses, questions)

	assert.InDelta(t, 6, agg.goalScore, 1e-9)
	assert.InDelta(t, 10, agg.lifestyleScore, 1e-9)
	require.NotNil(t, agg.activityScore)
	assert.InDelta(t, 1.55, *agg.activityScore, 1e-9)

	// HIZ 值按桶去重
	assert.Equal(t, []string{"Cravings"}, agg.hizOrdered["HIZ1"])
	assert.Equal(t, []string{"Bloating"}, agg.hizOrdered["HIZ2"])
	assert.Empty(t, agg.hizOrdered["HIZ3"])
}

func TestResolveOptionFallback(t *testing.T) {
	question := &model.Question{
		Options: []model.QuestionOption{
			{BaseModel: model.BaseModel{ID: 11}, Value: "often", Label: "Often", Score: floatPtr(8), HizTag: "HIZ1", HizValue: "Cravings"},
			{BaseModel: model.BaseModel{ID: 12}, Value: "rarely", Label: "Rarely", Score: floatPtr(2)},
		},
	}

	// 快照自带分值时不回查
	v := resolveOption(model.OptionRef{ID: 11, Score: json.RawMessage(`5`)}, question)
	assert.InDelta(t, 5, v.score, 1e-9)

	// 缺分值按 ID 回查
	v = resolveOption(model.OptionRef{ID: 12}, question)
	assert.InDelta(t, 2, v.score, 1e-9)

	// ID 对不上按 value 回查
	v = resolveOption(model.OptionRef{ID: 99, Value: "often"}, question)
	assert.InDelta(t, 8, v.score, 1e-9)
	assert.Equal(t, "HIZ1", v.hizTag)

	// 最后按 label 回查
	v = resolveOption(model.OptionRef{Label: "Rarely"}, question)
	assert.InDelta(t, 2, v.score, 1e-9)

	// 全都对不上，按零分处理
	v = resolveOption(model.OptionRef{Label: "Unknown"}, question)
	assert.InDelta(t, 0, v.score, 1e-9)
}

func TestBuildReportFullPath(t *testing.T) {
	svc, db := newReportService(t)

	user := &model.User{FullName: "Asha Rao", Mobile: "9000000001", Gender: model.GenderMale, Weight: 70, BodyType: model.BodyFatButFit}
	require.NoError(t, db.Create(user).Error)

	qGoal := &model.Question{
		Section: model.SectionGoals,
		Type:    model.QuestionChoice,
		Options: []model.QuestionOption{
			{Label: "Often", Value: "often", Score: floatPtr(8), HizTag: "HIZ1", HizValue: "Cravings"},
		},
	}
	require.NoError(t, db.Create(qGoal).Error)

	qLife := &model.Question{
		Section: model.SectionLifestyle,
		Type:    model.QuestionChoice,
		Options: []model.QuestionOption{
			{Label: "Lightly active", Score: floatPtr(10), ActivityScore: floatPtr(1.2)},
		},
	}
	require.NoError(t, db.Create(qLife).Error)

	goal := "Fat Loss"
	session := &model.QuizSession{
		SessionID:      "sess-report",
		UserID:         &user.ID,
		CurrentSection: model.SectionCompleted,
		IsCompleted:    true,
		SelectedGoal:   &goal,
		Responses: model.ResponseMap{
			// 快照缺分值，走按 ID 回查的路径
			fmt.Sprintf("%d", qGoal.ID): json.RawMessage(fmt.Sprintf(`{"id":1,"value":{"id":%d,"label":"Often"}}`, qGoal.Options[0].ID)),
			// 完整快照，直接用快照里的分值
			fmt.Sprintf("%d", qLife.ID): json.RawMessage(fmt.Sprintf(`{"id":%d,"label":"Lightly active","score":10,"activityScore":1.2}`, qLife.Options[0].ID)),
		},
	}
	require.NoError(t, db.Create(session).Error)

	report, err := svc.BuildReport("sess-report")
	require.NoError(t, err)

	// 100 - (8*0.8 + 10*0.2 + 10) = 81.6
	assert.InDelta(t, 81.6, report.HealthAssessment, 1e-9)
	require.NotNil(t, report.HealthAssessmentTag)
	assert.Equal(t, "Minimum Imbalance", *report.HealthAssessmentTag)

	require.NotNil(t, report.UserName)
	assert.Equal(t, "Asha Rao", *report.UserName)
	require.NotNil(t, report.Goal)
	assert.Equal(t, "Fat Loss", *report.Goal)

	require.NotNil(t, report.Bmr)
	assert.Equal(t, 1540, *report.Bmr)

	// 1540 * 1.2 * 0.95 = 1755.6 -> 1756，取整到百位为 1800
	require.NotNil(t, report.MaintenanceCalories)
	assert.Equal(t, 1756, *report.MaintenanceCalories)

	require.NotNil(t, report.ChartMaintenanceCalories)
	assert.Equal(t, 1800, report.ChartMaintenanceCalories.Value)
	assert.Equal(t, "http://localhost:8080/charts/1800.webp", report.ChartMaintenanceCalories.Image)

	require.NotNil(t, report.IdealTarget)
	assert.Equal(t, 1700, report.IdealTarget.Low)
	assert.Equal(t, 1800, report.IdealTarget.High)
	assert.Equal(t, "kcal/day", report.IdealTarget.Unit)

	require.Len(t, report.HizValues, 5)
	assert.Equal(t, "HIZ1", report.HizValues[0].Tag)
	require.NotNil(t, report.HizValues[0].Value)
	assert.Equal(t, "Cravings", *report.HizValues[0].Value)
	assert.Equal(t, "/test/cravings.svg", report.HizValues[0].Image)
	assert.Nil(t, report.HizValues[1].Value)

	require.NotNil(t, report.GoalTag)
	assert.Len(t, report.RootCause, 3)
	assert.Equal(t, "sess-report", report.SessionID)
}

func TestBuildReportClampsAssessmentAtHundred(t *testing.T) {
	svc, db := newReportService(t)

	// Muscular/Lean 体型 BMI 分值为 0，目标环节负分把原始评估
	// 推到 108，上限收口到恰好 100
	user := &model.User{FullName: "N", Mobile: "9000000021", Gender: model.GenderMale, Weight: 70, BodyType: model.BodyMuscularLean}
	require.NoError(t, db.Create(user).Error)

	qGoal := &model.Question{
		Section: model.SectionGoals,
		Type:    model.QuestionChoice,
		Options: []model.QuestionOption{{Label: "Never", Score: floatPtr(-10)}},
	}
	require.NoError(t, db.Create(qGoal).Error)

	qLife := &model.Question{
		Section: model.SectionLifestyle,
		Type:    model.QuestionChoice,
		Options: []model.QuestionOption{{Label: "act", Score: floatPtr(0), ActivityScore: floatPtr(1.2)}},
	}
	require.NoError(t, db.Create(qLife).Error)

	goal := "Fat Loss"
	session := &model.QuizSession{
		SessionID:    "sess-clamp",
		UserID:       &user.ID,
		IsCompleted:  true,
		SelectedGoal: &goal,
		Responses: model.ResponseMap{
			fmt.Sprintf("%d", qGoal.ID): json.RawMessage(fmt.Sprintf(`{"id":%d,"score":-10}`, qGoal.Options[0].ID)),
			fmt.Sprintf("%d", qLife.ID): json.RawMessage(fmt.Sprintf(`{"id":%d,"score":0,"activityScore":1.2}`, qLife.Options[0].ID)),
		},
	}
	require.NoError(t, db.Create(session).Error)

	report, err := svc.BuildReport("sess-clamp")
	require.NoError(t, err)

	assert.InDelta(t, 100, report.HealthAssessment, 1e-9)
	require.NotNil(t, report.HealthAssessmentTag)
	assert.Equal(t, "Minimum Imbalance", *report.HealthAssessmentTag)
}

func TestBuildReportRequiresCompletedSession(t *testing.T) {
	svc, db := newReportService(t)

	session := &model.QuizSession{SessionID: "sess-open", Responses: model.ResponseMap{}}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.BuildReport("sess-open")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, err = svc.BuildReport("sess-missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestBuildReportWithoutProfileFailsOnChart(t *testing.T) {
	svc, db := newReportService(t)

	// 匿名完成的会话没有体重和体型，算不出维持热量，
	// 图表取 0 档位时精确匹配不到，硬失败
	session := &model.QuizSession{SessionID: "sess-nouser", IsCompleted: true, Responses: model.ResponseMap{}}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.BuildReport("sess-nouser")
	assert.ErrorIs(t, err, util.ErrChartNotConfigured)
}

func TestBuildReportChartClamping(t *testing.T) {
	svc, db := newReportService(t)

	makeSession := func(id, mobile string, weight float64, gender model.Gender, bodyType model.BodyType, activity float64, goal string) {
		user := &model.User{FullName: "T", Mobile: mobile, Gender: gender, Weight: weight, BodyType: bodyType}
		require.NoError(t, db.Create(user).Error)

		q := &model.Question{
			Section: model.SectionLifestyle,
			Type:    model.QuestionChoice,
			Options: []model.QuestionOption{{Label: "act", Score: floatPtr(0), ActivityScore: floatPtr(activity)}},
		}
		require.NoError(t, db.Create(q).Error)

		session := &model.QuizSession{
			SessionID:    id,
			UserID:       &user.ID,
			IsCompleted:  true,
			SelectedGoal: &goal,
			Responses: model.ResponseMap{
				fmt.Sprintf("%d", q.ID): json.RawMessage(fmt.Sprintf(`{"id":%d,"score":0,"activityScore":%v}`, q.Options[0].ID, activity)),
			},
		}
		require.NoError(t, db.Create(session).Error)
	}

	// 50kg 女性 Skinny：1000 * 1.0 * 1.05 = 1050 -> 1100，低于下限取 1600 档
	makeSession("sess-low", "9000000011", 50, model.GenderFemale, model.BodySkinny, 1.0, "Weight Loss")
	low, err := svc.BuildReport("sess-low")
	require.NoError(t, err)
	assert.Equal(t, 1600, low.ChartMaintenanceCalories.Value)

	// 减重目标的建议区间不跟档位走，直接基于取整维持热量
	require.NotNil(t, low.IdealTarget)
	assert.Equal(t, 500, low.IdealTarget.Low)
	assert.Equal(t, 600, low.IdealTarget.High)

	// 170kg 男性 Very Fat：3740 * 1.55 * 1.0 = 5797 -> 5800，高于上限取 3600 档
	makeSession("sess-high", "9000000012", 170, model.GenderMale, model.BodyVeryFat, 1.55, "Gut Health")
	high, err := svc.BuildReport("sess-high")
	require.NoError(t, err)
	assert.Equal(t, 3600, high.ChartMaintenanceCalories.Value)
}
