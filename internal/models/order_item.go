package models

type OrderItem struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	OrderID        uint    `json:"order_id" gorm:"not null;index"`
	ProductID      uint    `json:"product_id" gorm:"not null"`
	Product        Product `json:"product" gorm:"foreignKey:ProductID"`
	Quantity       int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	Price          float64 `json:"price" gorm:"type:decimal(10,2);not null"` // snapshot at order time
	FillingDetails string  `json:"filling_details" gorm:"type:text"`
}

// LineTotal is the snapshot price multiplied by quantity.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
