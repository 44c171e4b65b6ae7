package models

// OrderItem is one line of an order, already joined with its menu item.
type OrderItem struct {
	ID         string       `json:"id,omitempty" bson:"id,omitempty"`
	MenuItemID int64        `json:"menu_item_id" bson:"menu_item_id"`
	Quantity   int          `json:"cantidad" bson:"cantidad" validate:"min=1"`
	UnitPrice  float64      `json:"precio_unitario" bson:"precio_unitario"`
	Subtotal   float64      `json:"subtotal" bson:"subtotal"`
	Notes      string       `json:"notas,omitempty" bson:"notas,omitempty"`
	MenuItem   *MenuItemRef `json:"menu_item,omitempty" bson:"menu_item,omitempty"`
}

type MenuItemRef struct {
	ID         int64  `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	CategoryID *int64 `json:"category_id,omitempty" bson:"category_id,omitempty"`
}

// Name returns the menu item name or "Item" when the join left it empty.
func (i OrderItem) Name() string {
	if i.MenuItem == nil || i.MenuItem.Name == "" {
		return "Item"
	}
	return i.MenuItem.Name
}
