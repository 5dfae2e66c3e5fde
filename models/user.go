package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)
