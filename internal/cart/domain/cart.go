package domain

// CartLine is one product held in a user's cart. There is at most one line
// per (userEmail, productId); repeated adds are rejected, not merged.
type CartLine struct {
	ID          string  `bson:"_id,omitempty" json:"_id"`
	UserEmail   string  `bson:"userEmail" json:"userEmail"`
	ProductID   string  `bson:"productId" json:"productId"`
	ProductName string  `bson:"productName" json:"productName"`
	UnitPrice   float64 `bson:"productPrice" json:"productPrice"`
	Quantity    int64   `bson:"quantity" json:"quantity"`
	LineTotal   float64 `bson:"totalPrice" json:"totalPrice"`
}
