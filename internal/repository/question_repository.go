package repository

import (
	"nutriquiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// ListBySection 按环节（GOALS 环节再按目标类别）取题，按 step_order 排序
func (r *QuestionRepository) ListBySection(section model.Section, goal string) ([]model.Question, error) {
	var qs []model.Question
	query := r.DB.Preload("Options").Where("section = ?", section)
	if section == model.SectionGoals {
		query = query.Where("goal_type = ?", goal)
	}
	err := query.Order("step_order asc").Find(&qs).Error
	return qs, err
}

// FindByIDs 批量加载题目并建立按ID的查找表，供报告聚合使用
func (r *QuestionRepository) FindByIDs(ids []uint) (map[uint]*model.Question, error) {
	lookup := make(map[uint]*model.Question, len(ids))
	if len(ids) == 0 {
		return lookup, nil
	}
	var qs []model.Question
	if err := r.DB.Preload("Options").Where("id IN ?", ids).Find(&qs).Error; err != nil {
		return nil, err
	}
	for i := range qs {
		lookup[qs[i].ID] = &qs[i]
	}
	return lookup, nil
}
