package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Section 测评的五个有序环节
type Section string

const (
	SectionBasic      Section = "BASIC"
	SectionGoalSelect Section = "GOAL_SELECT"
	SectionGoals      Section = "GOALS"
	SectionLifestyle  Section = "LIFESTYLE"
	SectionCompleted  Section = "COMPLETED"
)

// 环节只进不退，按此序号比较
var sectionRank = map[Section]int{
	SectionBasic:      1,
	SectionGoalSelect: 2,
	SectionGoals:      3,
	SectionLifestyle:  4,
	SectionCompleted:  5,
}

// Rank 返回环节序号，未知环节返回 0
func (s Section) Rank() int {
	return sectionRank[s]
}

// Valid 检查环节名是否属于五个已定义环节
func (s Section) Valid() bool {
	return sectionRank[s] != 0
}

// ResponseMap 按题目ID存放答案的稀疏映射，答案形态不固定
// （标量、单选快照或多选快照数组），整体以 JSON 列落库。
type ResponseMap map[string]json.RawMessage

func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ResponseMap) Scan(value interface{}) error {
	if value == nil {
		*m = ResponseMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ResponseMap: %T", value)
	}
	if len(data) == 0 {
		*m = ResponseMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// swagger:model QuizSession
type QuizSession struct {
	BaseModel
	SessionID string `gorm:"size:100;uniqueIndex;not null" json:"sessionId"`

	// 可选的用户关联，每次请求按当前认证状态重新盖章
	UserID *uint `gorm:"index" json:"userId"`

	CurrentSection Section `gorm:"size:20;default:'BASIC'" json:"currentSection"`
	CurrentStep    int     `gorm:"default:0" json:"currentStep"`
	IsCompleted    bool    `gorm:"default:false" json:"isCompleted"`

	SelectedGoal *string `gorm:"size:100;index" json:"selectedGoal"`

	Responses ResponseMap `gorm:"type:json" json:"responses"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}
