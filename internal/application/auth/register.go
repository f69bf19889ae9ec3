package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/amirhosseinghanipour/lockgate/internal/domain"
	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

type registerInput struct {
	Identifier string `validate:"required,min=3"`
	Password   string `validate:"required,min=6"`
}

// Register creates an unlocked account with zero failures. It fails with
// ErrDuplicateIdentifier, ErrWeakIdentifier, or ErrWeakCredential without
// mutating any state, and surfaces persistence errors instead of claiming a
// registration the store did not accept.
func (e *Engine) Register(ctx context.Context, identifier, password string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.accounts[identifier]; ok {
		registrations.WithLabelValues("duplicate").Inc()
		return domerrors.ErrDuplicateIdentifier
	}
	if err := e.validateRegister(identifier, password); err != nil {
		registrations.WithLabelValues("rejected").Inc()
		return err
	}

	digest, err := e.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash credential: %w", err)
	}
	e.accounts[identifier] = domain.NewAccount(identifier, digest, e.now())
	if err := e.persist(ctx); err != nil {
		delete(e.accounts, identifier)
		return err
	}
	registrations.WithLabelValues("ok").Inc()
	e.log.Info().Str("identifier", identifier).Msg("account registered")
	return nil
}

func (e *Engine) validateRegister(identifier, password string) error {
	err := e.validate.Struct(registerInput{Identifier: identifier, Password: password})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Identifier" {
				return domerrors.ErrWeakIdentifier
			}
		}
		return domerrors.ErrWeakCredential
	}
	return err
}
