package domain

// Product is owned by catalog management. The settlement core only reads
// name and price and mutates stock through the inventory ledger.
type Product struct {
	ID    string  `bson:"_id,omitempty" json:"_id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
	Stock int64   `bson:"stock" json:"stock"`
	Image string  `bson:"image,omitempty" json:"image,omitempty"`
}
