package model

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnset  Gender = "unset"
)

// 四种固定体型分类，报告引擎据此查 BMI 分值和 TDEE 系数
type BodyType string

const (
	BodyFatButFit    BodyType = "Fat But Fit"
	BodyVeryFat      BodyType = "Very Fat"
	BodySkinny       BodyType = "Skinny"
	BodyMuscularLean BodyType = "Muscular/Lean"
)

// swagger:model User
type User struct {
	BaseModel
	FullName  string   `gorm:"size:100;not null;index" json:"fullName"`
	Mobile    string   `gorm:"size:20;unique;not null" json:"mobile"`
	Email     string   `gorm:"size:100" json:"email"`
	AltMobile string   `gorm:"size:20" json:"altMobile"`
	Age       int      `json:"age"`
	Gender    Gender   `gorm:"size:10;default:'unset'" json:"gender"`
	Weight    float64  `json:"weight"` // 公斤
	BodyType  BodyType `gorm:"size:20" json:"bodyType"`
	Role      UserRole `gorm:"size:10;default:'user'" json:"role"`
	Landmark  string   `gorm:"size:255" json:"landmark"`
	State     string   `gorm:"size:100" json:"state"`
	City      string   `gorm:"size:100" json:"city"`
	ZipCode   string   `gorm:"size:20" json:"zipCode"`
}

func (User) TableName() string {
	return "users"
}
