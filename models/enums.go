package models

import (
	"errors"
)

// Sheet values stay in Spanish: the workbook is the human-editable surface
// and the staff reads it that way.

type ProductType string

const (
	ProductTypeBottle     ProductType = "Botella"
	ProductTypeDrink      ProductType = "Trago"
	ProductTypeIngredient ProductType = "Ingrediente"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeBottle, ProductTypeDrink, ProductTypeIngredient:
		return true
	}
	return false
}

type MovementKind string

const (
	MovementEntry      MovementKind = "Entrada"
	MovementTransfer   MovementKind = "Transferencia"
	MovementReturn     MovementKind = "Devolución"
	MovementExitBottle MovementKind = "Salida Botella"
	MovementExitDrink  MovementKind = "Salida Trago"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementTransfer, MovementReturn, MovementExitBottle, MovementExitDrink:
		return true
	}
	return false
}

// IsExit reports whether the kind decreases stock. The dashboard
// top-products rollup accumulates exits only.
func (k MovementKind) IsExit() bool {
	return k == MovementExitBottle || k == MovementExitDrink
}

type Location string

const (
	LocationWarehouse Location = "Almacén"
	LocationBar       Location = "Bar"
	LocationCellar    Location = "Vinera"

	// ExternalOrigin marks a return coming from outside the tracked
	// locations (a customer). It is a valid origin, never a destination,
	// and produces no negative ledger entry.
	ExternalOrigin Location = "Cliente/Externo"
)

var Locations = []Location{LocationWarehouse, LocationBar, LocationCellar}

func (l Location) Valid() bool {
	for _, known := range Locations {
		if l == known {
			return true
		}
	}
	return false
}

type Shift string

const (
	ShiftOpening Shift = "Apertura"
	ShiftClosing Shift = "Cierre"
)

func (s Shift) Valid() bool {
	return s == ShiftOpening || s == ShiftClosing
}

type StockStatus string

const (
	StockStatusNoMinimum  StockStatus = "Sin mínimo"
	StockStatusCritical   StockStatus = "Crítico"
	StockStatusLow        StockStatus = "Bajo"
	StockStatusSufficient StockStatus = "Suficiente"
)

type Role string

const (
	RoleBartender  Role = "bartender"
	RoleWarehouse  Role = "almacenista"
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBartender, RoleWarehouse, RoleAdmin, RoleSupervisor:
		return Role(s), nil
	}
	return "", errors.New("invalid role")
}

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "NotStarted"
	SessionInProgress SessionStatus = "InProgress"
	SessionSaved      SessionStatus = "Saved"
)
