package httpapi

import (
	"net/http"
)

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := a.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	token := a.transport.Deliver(w, res.Credential)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "Registered",
		User:    toUserDTO(res.User),
		Token:   token,
	})
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := a.users.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	token := a.transport.Deliver(w, res.Credential)
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Logged in",
		User:    toUserDTO(res.User),
		Token:   token,
	})
}

// Logout clears the client's cookie. The token itself stays valid until it
// expires.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.transport.Revoke(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Profile(r.Context(), userID(r))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: toUserDTO(u)})
}

func (a *API) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := a.users.UpdateProfile(r.Context(), userID(r), req.Name, req.Email)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Message: "Profile updated", User: toUserDTO(u)})
}

func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := a.users.ChangePassword(r.Context(), userID(r), req.CurrentPassword, req.NewPassword); err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated"})
}
