package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/internal/util"

	"gorm.io/gorm"
)

type ReportService struct {
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	chartRepo    *repository.ChartRepository
	userRepo     *repository.UserRepository
	cfg          *config.Config
}

func NewReportService(sessionRepo *repository.SessionRepository, questionRepo *repository.QuestionRepository, chartRepo *repository.ChartRepository, userRepo *repository.UserRepository, cfg *config.Config) *ReportService {
	return &ReportService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		chartRepo:    chartRepo,
		userRepo:     userRepo,
		cfg:          cfg,
	}
}

// IdealTarget 建议热量区间
type IdealTarget struct {
	Low  int    `json:"low"`
	High int    `json:"high"`
	Unit string `json:"unit"`
}

// HizValue 报告中单个 HIZ 桶的展示条目
type HizValue struct {
	Tag   string  `json:"tag"`
	Value *string `json:"value"`
	Image string  `json:"image"`
}

// Report 个性化健康报告载荷
type Report struct {
	UserName                 *string      `json:"userName"`
	Goal                     *string      `json:"goal"`
	HealthAssessment         float64      `json:"healthAssessment"`
	HealthAssessmentTag      *string      `json:"healthAssessmentTag"`
	GoalTag                  *GoalTag     `json:"goalTag"`
	HizValues                []HizValue   `json:"hizValues"`
	Bmr                      *int         `json:"bmr"`
	MaintenanceCalories      *int         `json:"maintenanceCalories"`
	ChartMaintenanceCalories *model.Chart `json:"chartMaintenanceCalories"`
	IdealTarget              *IdealTarget `json:"idealTarget"`
	RootCause                []RootCause  `json:"rootCause"`
	SessionID                string       `json:"sessionId"`
}

// optionView 选项在聚合阶段的统一视图，来源可能是答案快照，
// 也可能是回查到的题目选项
type optionView struct {
	score    float64
	activity *float64
	hizTag   string
	hizValue string
}

func viewFromOption(opt *model.QuestionOption) optionView {
	v := optionView{hizTag: opt.HizTag, hizValue: opt.HizValue}
	if opt.Score != nil {
		v.score = *opt.Score
	}
	v.activity = opt.ActivityScore
	return v
}

func viewFromRef(ref model.OptionRef) optionView {
	v := optionView{
		score:    util.ToFloat(ref.Score),
		hizTag:   ref.HizTag,
		hizValue: ref.HizValue,
	}
	if ref.HasActivityScore() {
		a := util.ToFloat(ref.ActivityScore)
		v.activity = &a
	}
	return v
}

// resolveOption 快照缺少分值时回查题目的选项表，
// 匹配优先级：ID > value > label
func resolveOption(ref model.OptionRef, question *model.Question) optionView {
	if ref.HasScore() || question == nil || len(question.Options) == 0 {
		return viewFromRef(ref)
	}
	if ref.ID != 0 {
		for i := range question.Options {
			if question.Options[i].ID == ref.ID {
				return viewFromOption(&question.Options[i])
			}
		}
	}
	if ref.Value != "" {
		for i := range question.Options {
			if question.Options[i].Value == ref.Value {
				return viewFromOption(&question.Options[i])
			}
		}
	}
	if ref.Label != "" {
		for i := range question.Options {
			if question.Options[i].Label == ref.Label {
				return viewFromOption(&question.Options[i])
			}
		}
	}
	return viewFromRef(ref)
}

// aggregates 按环节归集的计分结果
type aggregates struct {
	goalScore      float64
	lifestyleScore float64
	activityScore  *float64
	hizSeen        map[string]map[string]bool
	hizOrdered     map[string][]string
}

func newAggregates() *aggregates {
	a := &aggregates{
		hizSeen:    make(map[string]map[string]bool, len(hizTags)),
		hizOrdered: make(map[string][]string, len(hizTags)),
	}
	for _, tag := range hizTags {
		a.hizSeen[tag] = make(map[string]bool)
	}
	return a
}

func (a *aggregates) add(v optionView, section model.Section) {
	switch section {
	case model.SectionGoals:
		a.goalScore += v.score
	case model.SectionLifestyle:
		a.lifestyleScore += v.score
	}

	// 活动系数取最后一个出现的值，覆盖而非累加
	if v.activity != nil {
		score := *v.activity
		a.activityScore = &score
	}

	if v.hizTag != "" && v.hizValue != "" {
		if seen, ok := a.hizSeen[v.hizTag]; ok && !seen[v.hizValue] {
			seen[v.hizValue] = true
			a.hizOrdered[v.hizTag] = append(a.hizOrdered[v.hizTag], v.hizValue)
		}
	}
}

// aggregateResponses 按答案累计各环节得分。识别不了的答案形态
// 逐条跳过；Go 的 map 遍历无序，这里按题目键排序保证结果可复现。
func aggregateResponses(responses model.ResponseMap, questions map[uint]*model.Question) *aggregates {
	agg := newAggregates()

	keys := make([]string, 0, len(responses))
	for key := range responses {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		question := questions[util.MustParseUint(key)]
		var section model.Section
		if question != nil {
			section = question.Section
		}

		answer := model.ParseAnswer(responses[key])
		for _, ref := range answer.Selections() {
			agg.add(resolveOption(ref, question), section)
		}
	}
	return agg
}

// assessmentTag 健康评估得分对应的文案分档。恰好等于 80 的得分
// 落在两档之间，沿用既有分档边界，不归入任何档位。
func assessmentTag(score float64) *string {
	var tag string
	switch {
	case score <= 40:
		tag = "Critical Imbalance"
	case score > 40 && score < 80:
		tag = "Moderate Imbalance"
	case score > 80 && score <= 100:
		tag = "Minimum Imbalance"
	default:
		return nil
	}
	return &tag
}

// computeBMR 按体重和性别估算基础代谢，性别未设置时无法估算
func computeBMR(user *model.User) *int {
	if user == nil || user.Weight <= 0 {
		return nil
	}
	gender := model.Gender(strings.ToLower(string(user.Gender)))
	var bmr float64
	switch gender {
	case model.GenderMale:
		bmr = user.Weight * 22
	case model.GenderFemale:
		bmr = user.Weight * 20
	default:
		return nil
	}
	rounded := int(math.Round(bmr))
	return &rounded
}

// BuildReport 读取已完成的会话，聚合答案得分并装配完整报告
func (s *ReportService) BuildReport(sessionID string) (*Report, error) {
	session, err := s.sessionRepo.FindCompletedBySessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var user *model.User
	if session.UserID != nil {
		user, err = s.userRepo.FindByID(*session.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	questionIDs := make([]uint, 0, len(session.Responses))
	for key := range session.Responses {
		if id := util.MustParseUint(key); id != 0 {
			questionIDs = append(questionIDs, id)
		}
	}
	questions, err := s.questionRepo.FindByIDs(questionIDs)
	if err != nil {
		return nil, err
	}

	agg := aggregateResponses(session.Responses, questions)

	// 体型决定 BMI 分值与 TDEE 系数
	var bmiScore float64
	var tdeeValue *float64
	if user != nil {
		if factor, ok := bodyTypeFactors[user.BodyType]; ok {
			bmiScore = factor.bmiScore
			tdee := factor.tdeeValue
			tdeeValue = &tdee
		}
	}

	healthAssessment := 100 - (agg.goalScore*0.8 + agg.lifestyleScore*0.2 + bmiScore)
	if healthAssessment > 100 {
		healthAssessment = 100
	}

	bmr := computeBMR(user)

	var maintenanceCalories *int
	if bmr != nil && agg.activityScore != nil && tdeeValue != nil {
		m := int(math.Round(float64(*bmr) * *agg.activityScore * *tdeeValue))
		maintenanceCalories = &m
	}

	var roundedMaintenance *int
	if maintenanceCalories != nil {
		r := int(math.Round(float64(*maintenanceCalories)/100)) * 100
		roundedMaintenance = &r
	}

	goal := ""
	if session.SelectedGoal != nil {
		goal = *session.SelectedGoal
	}

	var idealTarget *IdealTarget
	if roundedMaintenance != nil {
		if strings.EqualFold(goal, "weight loss") {
			idealTarget = &IdealTarget{Low: *roundedMaintenance - 600, High: *roundedMaintenance - 500, Unit: "kcal/day"}
		} else {
			idealTarget = &IdealTarget{Low: *roundedMaintenance - 100, High: *roundedMaintenance, Unit: "kcal/day"}
		}
	}

	// 图表档位限定在 [1600, 3600]，缺档属于参考数据配置缺陷，必须硬失败
	chartVal := 0
	if roundedMaintenance != nil {
		chartVal = *roundedMaintenance
		if chartVal < 1600 {
			chartVal = 1600
		} else if chartVal > 3600 {
			chartVal = 3600
		}
	}
	chart, err := s.chartRepo.FindByValue(chartVal)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", util.ErrChartNotConfigured, chartVal)
	}
	if err != nil {
		return nil, err
	}
	chart.Image = util.MakeAbsoluteURL(s.cfg.Server.BaseURL, chart.Image)

	hizValues := make([]HizValue, 0, len(hizTags))
	for i, tag := range hizTags {
		entry := HizValue{Tag: tag, Image: hizImages[i]}
		if values := agg.hizOrdered[tag]; len(values) > 0 {
			joined := strings.Join(values, ", ")
			entry.Value = &joined
		}
		hizValues = append(hizValues, entry)
	}

	report := &Report{
		HealthAssessment:         healthAssessment,
		HealthAssessmentTag:      assessmentTag(healthAssessment),
		HizValues:                hizValues,
		Bmr:                      bmr,
		MaintenanceCalories:      maintenanceCalories,
		ChartMaintenanceCalories: chart,
		IdealTarget:              idealTarget,
		SessionID:                session.SessionID,
	}
	if user != nil {
		name := user.FullName
		report.UserName = &name
	}
	if session.SelectedGoal != nil {
		report.Goal = session.SelectedGoal
	}
	if tag, ok := goalTags[goal]; ok {
		report.GoalTag = &tag
	}
	if causes, ok := rootCauses[goal]; ok {
		report.RootCause = causes
	}

	return report, nil
}
