package model

import (
	"bytes"
	"encoding/json"
)

// AnswerKind 标记存储答案的三种形态
type AnswerKind int

const (
	AnswerScalar AnswerKind = iota // 原始标量（INPUT/OTP 的输入值）
	AnswerSingle                   // 单个选项快照
	AnswerMulti                    // 选项快照数组（MULTI 多选）
)

// OptionRef 答案中携带的选项引用，可能是完整快照，也可能只有
// id/value/label 之一。分值字段保留原始 JSON：历史数据里既有数字
// 也有字符串形式。
type OptionRef struct {
	ID            uint            `json:"id,omitempty"`
	Value         string          `json:"value,omitempty"`
	Label         string          `json:"label,omitempty"`
	Score         json.RawMessage `json:"score,omitempty"`
	ActivityScore json.RawMessage `json:"activityScore,omitempty"`
	HizTag        string          `json:"hizTag,omitempty"`
	HizValue      string          `json:"hizValue,omitempty"`
}

// HasScore 判断快照是否携带分值，缺失时需要回查题目选项表
func (o OptionRef) HasScore() bool {
	return len(o.Score) > 0 && !bytes.Equal(o.Score, []byte("null"))
}

func (o OptionRef) HasActivityScore() bool {
	return len(o.ActivityScore) > 0 && !bytes.Equal(o.ActivityScore, []byte("null"))
}

// Answer 某一题答案的归一化视图
type Answer struct {
	Kind    AnswerKind
	Scalar  json.RawMessage
	Options []OptionRef
}

// Selections 返回该答案选中的选项列表，标量答案不贡献选项
func (a Answer) Selections() []OptionRef {
	if a.Kind == AnswerScalar {
		return nil
	}
	return a.Options
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// ParseAnswer 对存储的答案做形态归一化，优先级：
//  1. value 为数组 => 每个元素视为一个选中选项
//  2. value 为带 id 的对象 => 单个选中选项
//  3. 答案本身带 id => 整条记录即为选中选项
//  4. 其余情况按标量处理，不贡献选项
//
// value 是对象但没有 id 时不在第 2 步终止，继续按第 3 步取整条
// 记录。无法识别的形态一律宽容降级为标量，由调用方按条目跳过。
func ParseAnswer(raw json.RawMessage) Answer {
	scalar := Answer{Kind: AnswerScalar, Scalar: raw}
	if len(raw) == 0 || firstByte(raw) != '{' {
		return scalar
	}

	// 外层 Value 遮住 OptionRef.Value，原始 value 字段留待后面按形态处理
	var envelope struct {
		OptionRef
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return scalar
	}

	switch firstByte(envelope.Value) {
	case '[':
		var opts []OptionRef
		if err := json.Unmarshal(envelope.Value, &opts); err != nil {
			return scalar
		}
		return Answer{Kind: AnswerMulti, Options: opts}
	case '{':
		var opt OptionRef
		if err := json.Unmarshal(envelope.Value, &opt); err == nil && opt.ID != 0 {
			return Answer{Kind: AnswerSingle, Options: []OptionRef{opt}}
		}
	}

	if envelope.ID != 0 {
		ref := envelope.OptionRef
		var value string
		if len(envelope.Value) > 0 && json.Unmarshal(envelope.Value, &value) == nil {
			ref.Value = value
		}
		return Answer{Kind: AnswerSingle, Options: []OptionRef{ref}}
	}

	return scalar
}
