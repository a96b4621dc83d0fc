package models

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

func (u User) toRecord() sheets.Record {
	return sheets.Record{
		"Usuario":    u.Username,
		"Clave_Hash": u.PasswordHash,
		"Rol":        string(u.Role),
	}
}

func userFromRecord(rec sheets.Record) User {
	return User{
		Username:     rec.Get("Usuario"),
		PasswordHash: rec.Get("Clave_Hash"),
		Role:         Role(rec.Get("Rol")),
	}
}

// Module names match the app sections; the login reply carries the subset
// the role may open so clients never hard-code the visibility rules.
var allModules = []string{
	"panel", "stock", "salidas", "entradas", "transferencias",
	"devoluciones", "recetas", "auditoria_diaria", "auditoria_semanal",
	"historial", "catalogo",
}

var allowedModulesByRole = map[Role][]string{
	RoleBartender:  {"panel", "salidas", "devoluciones", "stock", "historial", "recetas"},
	RoleWarehouse:  allModules,
	RoleAdmin:      allModules,
	RoleSupervisor: {"panel", "stock", "auditoria_diaria", "auditoria_semanal", "historial"},
}

// AllowedModules returns the app sections visible to a role.
func AllowedModules(role Role) []string {
	return allowedModulesByRole[role]
}

// CanWrite reports whether a role may invoke an operation of the named
// module. Supervisors are read-only everywhere.
func CanWrite(role Role, module string) bool {
	if role == RoleSupervisor {
		return false
	}
	for _, m := range allowedModulesByRole[role] {
		if m == module {
			return true
		}
	}
	return false
}

type LoginInfo struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Role     Role     `json:"role"`
	Modules  []string `json:"modules"`
}

var errInvalidCredentials = errors.New("invalid username or password")

// Login checks credentials against the Usuarios table and issues a session
// token carrying the role claim.
func (s *State) Login(ctx context.Context, username, password string) (*LoginInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.TrimSpace(username)
	var user *User
	for i := range s.Users {
		if s.Users[i].Username == username {
			user = &s.Users[i]
			break
		}
	}
	if user == nil {
		return nil, errInvalidCredentials
	}

	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	token, err := utils.JwtGenerate(user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
		Modules:  AllowedModules(user.Role),
	}, nil
}

type NewUser struct {
	Username string `json:"username" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required,min=6" validate:"required,min=6"`
	Role     string `json:"role" binding:"required" validate:"required"`
}

// CreateUser registers an account with a hashed password. Admin only; the
// gate lives at the HTTP layer.
func (s *State) CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	role, err := ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	input.Username = strings.TrimSpace(input.Username)
	for _, u := range s.Users {
		if u.Username == input.Username {
			return nil, errors.New("username already exists")
		}
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{Username: input.Username, PasswordHash: string(hash), Role: role}

	prev := len(s.Users)
	s.Users = append(s.Users, user)
	err = s.commit(ctx, func() { s.Users = s.Users[:prev] }, TableUsers)
	return &user, err
}

// GetUsers lists accounts without password hashes, for the admin screen.
func (s *State) GetUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.Users))
	for _, u := range s.Users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out
}
