package Models

// User is a staff login account. Permission levels: 1 viewer, 2 editor,
// 3 admin (force-unlock, defaults, staff management).
type User struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:255"`
	Email      string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
}
