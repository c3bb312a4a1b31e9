package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/api/middleware"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// actorFromRequest reads the caller seeded by middleware.Auth.
func actorFromRequest(r *http.Request) (appointments.Actor, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return appointments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return appointments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller role")
	}
	return appointments.Actor{UserID: userID, Role: role}, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable")
}
