package graphql

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/guard"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/dmitrijs2005/gophaccounts/internal/server/validation"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

type AccountService interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	BiometricLogin(ctx context.Context, key string) (*services.Session, error)
	RegisterBiometric(ctx context.Context, accountID, key string) (*models.Account, error)
	Update(ctx context.Context, accountID string, patch services.AccountPatch) (*models.Account, error)
	Remove(ctx context.Context, accountID string) (*models.Account, error)
}

// Resolver is the root resolver for Query and Mutation.
type Resolver struct {
	accounts AccountService
	guard    *guard.Guard
	logger   logging.Logger
}

func NewResolver(accounts AccountService, g *guard.Guard, logger logging.Logger) *Resolver {
	return &Resolver{
		accounts: accounts,
		guard:    g,
		logger:   logger.With("module", "graphql"),
	}
}

type credentialsInput struct {
	Email    string
	Password string
}

type biometricInput struct {
	BiometricKey string
}

type updateUserInput struct {
	Email    *string
	Password *string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input credentialsInput }) (*accountResolver, error) {
	email, err := validation.Email(args.Input.Email)
	if err == nil {
		err = validation.Password(args.Input.Password)
	}
	if err != nil {
		return nil, toError(ctx, r.logger, "register", err)
	}

	a, err := r.accounts.Register(ctx, email, args.Input.Password)
	if err != nil {
		return nil, toError(ctx, r.logger, "register", err)
	}
	return &accountResolver{a}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input credentialsInput }) (*authPayloadResolver, error) {
	email, err := validation.Email(args.Input.Email)
	if err == nil {
		err = validation.Password(args.Input.Password)
	}
	if err != nil {
		return nil, toError(ctx, r.logger, "login", err)
	}

	s, err := r.accounts.Login(ctx, email, args.Input.Password)
	if err != nil {
		return nil, toError(ctx, r.logger, "login", err)
	}
	return &authPayloadResolver{s}, nil
}

func (r *Resolver) BiometricLogin(ctx context.Context, args struct{ Input biometricInput }) (*authPayloadResolver, error) {
	if err := validation.BiometricKey(args.Input.BiometricKey); err != nil {
		return nil, toError(ctx, r.logger, "biometricLogin", err)
	}

	s, err := r.accounts.BiometricLogin(ctx, args.Input.BiometricKey)
	if err != nil {
		return nil, toError(ctx, r.logger, "biometricLogin", err)
	}
	return &authPayloadResolver{s}, nil
}

func (r *Resolver) RegisterBiometric(ctx context.Context, args struct{ Input biometricInput }) (*accountResolver, error) {
	return r.protected(ctx, "registerBiometric", func(ctx context.Context) (*models.Account, error) {
		if err := validation.BiometricKey(args.Input.BiometricKey); err != nil {
			return nil, err
		}
		caller, _ := guard.AccountFromContext(ctx)
		return r.accounts.RegisterBiometric(ctx, caller.ID, args.Input.BiometricKey)
	})
}

func (r *Resolver) Me(ctx context.Context) (*accountResolver, error) {
	return r.protected(ctx, "me", func(ctx context.Context) (*models.Account, error) {
		caller, _ := guard.AccountFromContext(ctx)
		return caller, nil
	})
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct{ Input updateUserInput }) (*accountResolver, error) {
	return r.protected(ctx, "updateUser", func(ctx context.Context) (*models.Account, error) {
		var patch services.AccountPatch

		if args.Input.Email != nil {
			email, err := validation.Email(*args.Input.Email)
			if err != nil {
				return nil, err
			}
			patch.Email = &email
		}
		if args.Input.Password != nil {
			if err := validation.Password(*args.Input.Password); err != nil {
				return nil, err
			}
			patch.Password = args.Input.Password
		}

		caller, _ := guard.AccountFromContext(ctx)
		return r.accounts.Update(ctx, caller.ID, patch)
	})
}

func (r *Resolver) RemoveUser(ctx context.Context) (*accountResolver, error) {
	return r.protected(ctx, "removeUser", func(ctx context.Context) (*models.Account, error) {
		caller, _ := guard.AccountFromContext(ctx)
		return r.accounts.Remove(ctx, caller.ID)
	})
}

func (r *Resolver) protected(ctx context.Context, op string, h func(ctx context.Context) (*models.Account, error)) (*accountResolver, error) {
	a, err := guard.Protect(r.guard, h)(ctx)
	if err != nil {
		return nil, toError(ctx, r.logger, op, err)
	}
	return &accountResolver{a}, nil
}

type accountResolver struct {
	a *models.Account
}

func (r *accountResolver) ID() graphqlgo.ID { return graphqlgo.ID(r.a.ID) }

func (r *accountResolver) Email() string { return r.a.Email }

func (r *accountResolver) BiometricKey() *string { return r.a.BiometricKey }

func (r *accountResolver) CreatedAt() graphqlgo.Time { return graphqlgo.Time{Time: r.a.CreatedAt} }

func (r *accountResolver) UpdatedAt() graphqlgo.Time { return graphqlgo.Time{Time: r.a.UpdatedAt} }

type authPayloadResolver struct {
	s *services.Session
}

func (r *authPayloadResolver) AccountID() graphqlgo.ID { return graphqlgo.ID(r.s.AccountID) }

func (r *authPayloadResolver) Email() string { return r.s.Email }

func (r *authPayloadResolver) Token() string { return r.s.AccessToken }
