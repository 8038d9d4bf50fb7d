package service

import "nutriquiz_backend/internal/model"

// 报告引擎使用的静态参考配置，进程启动即固定，不做运行时修改。

// GoalTag 目标类别对应的报告文案
type GoalTag struct {
	NormalText string `json:"normalText"`
	BoldText   string `json:"boldText"`
}

// RootCause 目标类别对应的成因说明
type RootCause struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var goalTags = map[string]GoalTag{
	"Fat Loss": {
		NormalText: "Your results show that your metabolism, digestion and fat-loss patterns need support,",
		BoldText:   "but you can see meaningful progress quickly with structured guidance.",
	},
	"PCOS": {
		NormalText: "Your assessment indicates hormonal balance and cycle patterns need support,",
		BoldText:   "but consistent guidance can bring steady and visible improvements.",
	},
	"Diabetes / Metabolic Health": {
		NormalText: "Your inputs suggest your energy and sugar-response systems need support,",
		BoldText:   "but with structured care, your metabolic stability can improve rapidly..",
	},
	"Gut Health": {
		NormalText: "Your patterns show that your digestion and gut rhythm need support,",
		BoldText:   "but with a guided approach, relief and balance can come quickly.",
	},
}

var rootCauses = map[string][]RootCause{
	"Fat Loss": {
		{
			Title:       "Gut Imbalance & Slow Digestion",
			Description: "Slow or stressed digestion can lead to bloating, heaviness, and reduced nutrient absorption, making fat-loss slower and inconsistent.",
		},
		{
			Title:       "Higher Fat Storage Tendency",
			Description: "Your body may be primed to store fat more easily, especially around the abdomen, due to metabolic, hormonal, or lifestyle factors.",
		},
		{
			Title:       "Low Metabolic Activity",
			Description: "Lower daily energy burn and inconsistent activity reduce how efficiently your body uses calories, leading to plateaued or stalled weight loss.",
		},
	},
	"PCOS": {
		{
			Title:       "Hormonal Imbalance & Cycle Irregularity",
			Description: "Irregular cycles often reflect underlying hormonal imbalance, which can affect mood, cravings, weight, and overall PCOS symptoms.",
		},
		{
			Title:       "Insulin Sensitivity Challenges",
			Description: "Reduced insulin efficiency can increase cravings, weight gain, and energy fluctuations while intensifying PCOS-related symptoms.",
		},
		{
			Title:       "Higher Fat Gain Response",
			Description: "Your body may gain fat more easily even with normal eating patterns due to hormonal and metabolic sensitivity associated with PCOS.",
		},
	},
	"Diabetes / Metabolic Health": {
		{
			Title:       "Unstable Energy & Glucose Levels",
			Description: "Fluctuating energy and post-meal hunger suggest unstable glucose control, which affects metabolism and daily performance.",
		},
		{
			Title:       "Higher Genetic Metabolic Risk",
			Description: "Family history can increase your baseline risk for blood sugar issues, making your metabolism more sensitive to food and lifestyle patterns.",
		},
		{
			Title:       "Irregular Monitoring & Awareness",
			Description: "Infrequent testing or unclear sugar patterns make it harder to detect early metabolic changes and maintain stable glucose levels.",
		},
	},
	"Gut Health": {
		{
			Title:       "Frequent Bloating & Digestive Stress",
			Description: "Recurring bloating indicates digestive strain, often caused by imbalance in gut bacteria, food breakdown, or fermentation.",
		},
		{
			Title:       "Digestive Imbalance & Poor Absorption",
			Description: "Issues like constipation, acidity, or gas signal disrupted digestion, which can impair nutrient absorption and overall gut function.",
		},
		{
			Title:       "Food Sensitivities & Gut Reactivity",
			Description: "Reactions to dairy, gluten, oily, or spicy foods suggest increased gut sensitivity and inflammation, which can worsen discomfort.",
		},
	},
}

// bodyTypeFactor 体型对应的固定 BMI 分值与 TDEE 系数
type bodyTypeFactor struct {
	bmiScore  float64
	tdeeValue float64
}

var bodyTypeFactors = map[model.BodyType]bodyTypeFactor{
	model.BodyFatButFit:    {bmiScore: 10, tdeeValue: 0.95},
	model.BodyVeryFat:      {bmiScore: 20, tdeeValue: 1.00},
	model.BodySkinny:       {bmiScore: 5, tdeeValue: 1.05},
	model.BodyMuscularLean: {bmiScore: 0, tdeeValue: 1.05},
}

// 五个固定 HIZ 桶及各自的报告插图
var hizTags = []string{"HIZ1", "HIZ2", "HIZ3", "HIZ4", "HIZ5"}

var hizImages = []string{
	"/test/cravings.svg",
	"/test/digestive.svg",
	"/test/fat.svg",
	"/test/low_activity.svg",
	"/test/doc.svg",
}
