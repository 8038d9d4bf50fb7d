package model

// Chart 热量图表参考数据，value 为 [1600, 3600] 内按 100 递增的档位，
// 报告引擎按档位精确匹配，缺档视为配置错误而非空值。
// swagger:model Chart
type Chart struct {
	BaseModel
	Value       int    `gorm:"uniqueIndex;not null" json:"value"`
	Image       string `gorm:"size:255;not null" json:"image"`
	Description string `gorm:"type:text" json:"description"`
}

func (Chart) TableName() string {
	return "charts"
}
