package auth

import (
	"context"
	"strings"

	"github.com/xiebiao/libadmin/internal/domain/session"
	"github.com/xiebiao/libadmin/pkg/validator"
)

// RegisterUseCase creates an account and signs it in.
type RegisterUseCase struct {
	gateway session.Gateway
	store   session.Store
	opts    Options
}

func NewRegisterUseCase(gateway session.Gateway, store session.Store, opts Options) *RegisterUseCase {
	return &RegisterUseCase{gateway: gateway, store: store, opts: opts}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, req session.Registration) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	token, err := uc.gateway.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return open(ctx, uc.store, uc.opts, token, req.Email)
}
