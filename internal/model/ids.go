package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	LoginIDPrefix     = "LOGIN-"
	ComplaintIDPrefix = "CMP-"
)

// NewLoginID генерирует публичный идентификатор вида LOGIN-XXXXXXXX
func NewLoginID() string {
	return LoginIDPrefix + shortHex()
}

// NewComplaintID генерирует идентификатор жалобы вида CMP-XXXXXXXX
func NewComplaintID() string {
	return ComplaintIDPrefix + shortHex()
}

// NewRowID — внутренний первичный ключ строки
func NewRowID() string {
	return ulid.Make().String()
}

func shortHex() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:8])
}
