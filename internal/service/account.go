package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type SignUpInput struct {
	Restaurant string
	Name       string
	Email      string
	Password   string
	Location   string
	Title      string
}

// Accounts manages the single owner account of the tenant.
type Accounts struct {
	st *State
}

func NewAccounts(st *State) *Accounts {
	return &Accounts{st: st}
}

// SignUp creates the owner account. There is one per tenant.
func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (domain.Account, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Restaurant) == "" {
		return domain.Account{}, invalid("name and restaurant are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.Account{}, invalid("invalid email %q", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return domain.Account{}, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acct := domain.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Restaurant:   strings.TrimSpace(in.Restaurant),
		Location:     strings.TrimSpace(in.Location),
		Title:        strings.TrimSpace(in.Title),
		PasswordHash: string(hash),
	}

	a.st.mu.Lock()
	defer a.st.mu.Unlock()

	if a.st.account != nil {
		return domain.Account{}, fmt.Errorf("an account already exists: %w", ErrDuplicateID)
	}
	if err := a.st.save(ctx, repository.CurrentUser(acct)); err != nil {
		return domain.Account{}, err
	}
	a.st.account = &acct
	return acct, nil
}

// Authenticate checks email and password against the owner account.
func (a *Accounts) Authenticate(email, password string) (domain.Account, error) {
	a.st.mu.Lock()
	acct := a.st.account
	a.st.mu.Unlock()

	if acct == nil || !strings.EqualFold(acct.Email, strings.TrimSpace(email)) {
		return domain.Account{}, ErrUnauthorized
	}
	err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Account{}, ErrUnauthorized
		}
		return domain.Account{}, fmt.Errorf("compare password: %w", err)
	}
	return *acct, nil
}

// Current returns the owner account matching email.
func (a *Accounts) Current(email string) (domain.Account, error) {
	a.st.mu.Lock()
	defer a.st.mu.Unlock()

	if a.st.account == nil || !strings.EqualFold(a.st.account.Email, email) {
		return domain.Account{}, fmt.Errorf("account %s: %w", email, ErrNotFound)
	}
	return *a.st.account, nil
}
