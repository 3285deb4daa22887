package model

import "time"

// User — зарегистрированный житель
type User struct {
	ID        string    `json:"id"`
	LoginID   string    `json:"login_id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Area      string    `json:"area"`
	Ward      string    `json:"ward_number"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateID заполняет ID и LoginID, если они еще не установлены
func (u *User) GenerateID() {
	if u.ID == "" {
		u.ID = NewRowID()
	}
	if u.LoginID == "" {
		u.LoginID = NewLoginID()
	}
}

// SessionRecord — запись о завершенной регистрации в канале
type SessionRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	State       State     `json:"state"`
	LoginID     string    `json:"login_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *SessionRecord) GenerateID() {
	if r.ID == "" {
		r.ID = NewRowID()
	}
}
