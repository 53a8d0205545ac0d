package controllers

import (
	"net/http"

	"github.com/procurehub/portal/api/middleware"
	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/api/validators"
	"github.com/procurehub/portal/internal/users"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

type updateProfileRequest struct {
	FullName      *string `json:"full_name"`
	ContactNumber *string `json:"contact_number"`
	Address       *string `json:"address"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UserGet returns the account for the caller or, for superadmins, any account.
func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserUpdateProfile applies the self-editable profile fields.
func UserUpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), middleware.ActorFromContext(r.Context()), userID, users.ProfileUpdate{
			FullName:      body.FullName,
			ContactNumber: body.ContactNumber,
			Address:       body.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserChangePassword replaces the caller's password after checking the current one.
func UserChangePassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changePasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ChangePassword(r.Context(), middleware.ActorFromContext(r.Context()), userID, users.ChangePasswordInput{
			CurrentPassword: body.CurrentPassword,
			NewPassword:     body.NewPassword,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "password_updated"})
	}
}
