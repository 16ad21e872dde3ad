package entities

type Tutorial struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string `json:"title" gorm:"type:varchar(255)"`
	Description string `json:"description" gorm:"type:varchar(255)"`
	Published   bool   `json:"published" gorm:"not null;default:false"`
}

func (Tutorial) TableName() string {
	return "tutorials"
}
