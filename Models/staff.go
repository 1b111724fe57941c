package Models

type Staff struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:255;not null;unique"`

	// Relationships
	Clients []Client `json:"clients,omitempty" gorm:"foreignKey:StaffID"`
}
