package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" maxLength:"254" doc:"Admin email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Admin password"`
	}
}

type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Token     string             `json:"token" doc:"Session token, usable as a Bearer credential"`
		ExpiresAt string             `json:"expiresAt" doc:"Token expiry (RFC 3339)"`
		Principal *PrincipalResponse `json:"principal"`
	}
}

type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

type SessionInput struct {
	Credentials
}

type SessionOutput struct {
	Body struct {
		Principal *PrincipalResponse `json:"principal" doc:"Current principal, null without a valid session"`
	}
}

func registerAuth(api huma.API, h *handler) {
	var middlewares huma.Middlewares
	if h.LoginLimiter != nil {
		middlewares = append(middlewares, h.LoginLimiter.Middleware(api))
	}

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Start an admin session",
		Tags:        []string{"Auth"},
		Middlewares: middlewares,
	}, h.login)

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Clear the session cookie",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusNoContent,
	}, h.logout)

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/auth/session",
		Summary:     "Describe the caller's session",
		Tags:        []string{"Auth"},
	}, h.session)
}

func (h *handler) login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	session, err := h.Auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, h.toHumaError(ctx, err)
	}

	out := &LoginOutput{SetCookie: h.cookie(session.Token, session.ExpiresAt)}
	out.Body.Token = session.Token
	out.Body.ExpiresAt = session.ExpiresAt.UTC().Format(timestampFormat)
	out.Body.Principal = toPrincipalResponse(session.Principal)
	return out, nil
}

func (h *handler) logout(_ context.Context, _ *struct{}) (*LogoutOutput, error) {
	c := h.cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	return &LogoutOutput{SetCookie: c}, nil
}

func (h *handler) session(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	out := &SessionOutput{}
	if p, ok := h.principal(ctx, input.Credentials).Get(); ok {
		out.Body.Principal = toPrincipalResponse(p)
	}
	return out, nil
}

func (h *handler) cookie(value string, expires time.Time) http.Cookie {
	return http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
