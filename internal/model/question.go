package model

type QuestionType string

const (
	QuestionInput  QuestionType = "INPUT"
	QuestionChoice QuestionType = "CHOICE"
	QuestionMulti  QuestionType = "MULTI"
	QuestionGif    QuestionType = "GIF"
	QuestionOTP    QuestionType = "OTP"
)

// swagger:model Question
type Question struct {
	BaseModel
	Section   Section      `gorm:"size:20;not null;index" json:"section"`
	GoalType  string       `gorm:"size:50;default:'NONE';index" json:"goalType"` // 仅 GOALS 环节使用
	StepOrder int          `gorm:"default:0" json:"stepOrder"`
	Type      QuestionType `gorm:"size:10;not null" json:"type"`

	QuestionText string `gorm:"type:text" json:"questionText"`
	Description  string `gorm:"type:text" json:"description"`

	GifURL         string `gorm:"size:255" json:"gifUrl,omitempty"`
	Duration       int    `gorm:"default:0" json:"duration,omitempty"` // 秒
	Placeholder    string `gorm:"size:255" json:"placeholder,omitempty"`
	ValidationType string `gorm:"size:20" json:"validationType,omitempty"` // number/text/phone/email

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOption 选项及其计分元数据，只读参考数据
type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Label      string `gorm:"size:255" json:"label"`
	Icon       string `gorm:"size:255" json:"icon,omitempty"`
	Value      string `gorm:"size:100" json:"value"` // 内部取值标识

	Score          *float64 `json:"score,omitempty"`
	HizTag         string   `gorm:"size:10" json:"hizTag,omitempty"` // HIZ1..HIZ5
	HizValue       string   `gorm:"size:255" json:"hizValue,omitempty"`
	ProteinTrigger bool     `gorm:"default:false" json:"proteinTrigger,omitempty"` // true = 植物蛋白
	BmiScore       *float64 `json:"bmiScore,omitempty"`
	TdeeScore      *float64 `json:"tdeeScore,omitempty"`
	ActivityScore  *float64 `json:"activityScore,omitempty"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
