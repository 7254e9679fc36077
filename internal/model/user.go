// Package model defines domain entities for the application.
package model

import "time"

// User is a registered storefront customer.
// Password holds an Argon2id PHC string, never the plaintext.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Addresses []Address `json:"addresses"`
	Orders    []Order   `json:"orders"`
}

// Address is a saved delivery address.
type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	FoodID   string  `json:"food_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is a past or pending order placed by a user.
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ProfileUpdate carries the fields to merge into the active user.
// Nil fields are left untouched. Password is the new plaintext.
type ProfileUpdate struct {
	Name      *string
	Email     *string
	Password  *string
	Addresses *[]Address
	Orders    *[]Order
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil &&
		p.Addresses == nil && p.Orders == nil
}

// Clone returns a deep copy so callers can't mutate stored state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Addresses = append(make([]Address, 0, len(u.Addresses)), u.Addresses...)
	c.Orders = make([]Order, len(u.Orders))
	for i, o := range u.Orders {
		o.Items = append([]OrderItem(nil), o.Items...)
		c.Orders[i] = o
	}
	return &c
}

// Apply merges a profile update into the user. The caller is
// responsible for hashing a new password before calling Apply.
func (u *User) Apply(p ProfileUpdate) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Addresses != nil {
		u.Addresses = append(make([]Address, 0, len(*p.Addresses)), *p.Addresses...)
	}
	if p.Orders != nil {
		u.Orders = append(make([]Order, 0, len(*p.Orders)), *p.Orders...)
	}
}
