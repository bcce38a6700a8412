package dashboard

import (
	"context"
	"strings"

	"shiftboard/internal/storage"
)

// Keys under which the dashboard keeps its state in storage.
const (
	UserKey      = "utente"
	EmployeesKey = "dipendenti"
	ShiftsKey    = "turni"
)

// LoadUser reads the signed-in user from svc. A missing or unreadable
// entry yields the zero User, which renders as the anonymous header.
func LoadUser(ctx context.Context, svc storage.Service) User {
	var user User
	if !svc.GetObject(ctx, UserKey, &user) {
		return User{}
	}
	user.Name = strings.TrimSpace(user.Name)
	return user
}

// SaveUser stores user as the signed-in user
func SaveUser(ctx context.Context, svc storage.Service, user User) bool {
	return svc.SetObject(ctx, UserKey, user)
}
