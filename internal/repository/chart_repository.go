package repository

import (
	"errors"

	"nutriquiz_backend/internal/model"

	"gorm.io/gorm"
)

type ChartRepository struct {
	DB *gorm.DB
}

func NewChartRepository(db *gorm.DB) *ChartRepository {
	return &ChartRepository{DB: db}
}

func (r *ChartRepository) Create(chart *model.Chart) error {
	return r.DB.Create(chart).Error
}

func (r *ChartRepository) FindByID(id uint) (*model.Chart, error) {
	var c model.Chart
	err := r.DB.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByValue 按热量档位精确匹配
func (r *ChartRepository) FindByValue(value int) (*model.Chart, error) {
	var c model.Chart
	err := r.DB.Where("value = ?", value).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExistsByValue 检查档位是否已存在（排除指定ID，用于更新查重）
func (r *ChartRepository) ExistsByValue(value int, excludeID uint) (bool, error) {
	var c model.Chart
	query := r.DB.Where("value = ?", value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ChartRepository) ListAll() ([]model.Chart, error) {
	var cs []model.Chart
	err := r.DB.Order("value asc").Find(&cs).Error
	return cs, err
}

func (r *ChartRepository) Update(chart *model.Chart) error {
	return r.DB.Save(chart).Error
}

func (r *ChartRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Chart{}, id).Error
}
