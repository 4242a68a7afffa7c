package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// UserInfo is the shopper identity bundle collected at checkout. The
// password is not a session token; the backend uses it as a lookup key
// for that shopper's orders.
type UserInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Complete reports whether every identity field is filled in.
// requireCredential is false on the administrative path.
func (u UserInfo) Complete(requireCredential bool) bool {
	if u.Name == "" || u.Email == "" || u.Phone == "" || u.Address == "" {
		return false
	}
	return !requireCredential || u.Password != ""
}

// Order is owned by the backend once created; this is its wire shape.
type Order struct {
	ID          string      `json:"_id"`
	UserID      string      `json:"user_id"`
	UserName    string      `json:"user_name"`
	UserEmail   string      `json:"user_email"`
	UserPhone   string      `json:"user_phone"`
	UserAddress string      `json:"user_address"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CanEdit reports whether the order's items may still be changed. Any
// status past confirmed is frozen.
func (o *Order) CanEdit() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}
