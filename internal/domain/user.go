package domain

import (
	"strings"
	"time"
)

// User представляет агрегат пользователя вместе с множеством друзей
type User struct {
	ID       int64
	Name     string
	Email    string
	Login    string
	Birthday time.Time
	Friends  []int64 // ID друзей, по возрастанию
}

// Normalize подставляет логин вместо пустого имени.
func (u User) Normalize() User {
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}
	return u
}

// Clone возвращает копию пользователя, не разделяющую срез друзей.
func (u User) Clone() User {
	c := u
	c.Friends = append([]int64(nil), u.Friends...)
	if c.Friends == nil {
		c.Friends = []int64{}
	}
	return c
}

// UserRequest тело запроса на создание/обновление пользователя (HTTP)
type UserRequest struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Email    string  `json:"email" validate:"required,email"`
	Login    string  `json:"login" validate:"required,nospaces"`
	Birthday string  `json:"birthday" validate:"required,datetime=2006-01-02,notfuture"`
	Friends  []int64 `json:"friends,omitempty"` // nil: поле не передано
}

// ToUser переводит запрос в доменную модель.
func (r UserRequest) ToUser() (User, error) {
	birthday, err := time.Parse(DateLayout, r.Birthday)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Login:    r.Login,
		Birthday: birthday,
		Friends:  append([]int64{}, r.Friends...),
	}, nil
}

// UserResponse представление пользователя в ответах API
type UserResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Login    string  `json:"login"`
	Birthday string  `json:"birthday"`
	Friends  []int64 `json:"friends"`
}

func NewUserResponse(u User) UserResponse {
	c := u.Clone()
	return UserResponse{
		ID:       c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Login:    c.Login,
		Birthday: c.Birthday.Format(DateLayout),
		Friends:  c.Friends,
	}
}
