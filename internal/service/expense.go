package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

type ExpenseInput struct {
	Name   string
	Amount decimal.Decimal
	Date   domain.DateOnly
}

// Journal is the expense journal.
type Journal struct {
	st *State
}

func NewJournal(st *State) *Journal {
	return &Journal{st: st}
}

// List returns expenses newest first; same-day entries keep their
// insertion order.
func (j *Journal) List() []domain.Expense {
	j.st.mu.Lock()
	defer j.st.mu.Unlock()

	out := slices.Clone(j.st.expenses)
	if out == nil {
		out = []domain.Expense{}
	}
	slices.SortStableFunc(out, func(a, b domain.Expense) int {
		return cmp.Compare(b.Date.String(), a.Date.String())
	})
	return out
}

func (j *Journal) Add(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	e, err := j.build(uuid.NewString(), in)
	if err != nil {
		return domain.Expense{}, err
	}

	j.st.mu.Lock()
	defer j.st.mu.Unlock()

	next := append(slices.Clone(j.st.expenses), e)
	if err := j.st.save(ctx, repository.Expenses(next)); err != nil {
		return domain.Expense{}, err
	}
	j.st.expenses = next
	return e, nil
}

func (j *Journal) Edit(ctx context.Context, id string, in ExpenseInput) (domain.Expense, error) {
	e, err := j.build(id, in)
	if err != nil {
		return domain.Expense{}, err
	}

	j.st.mu.Lock()
	defer j.st.mu.Unlock()

	i := j.index(id)
	if i < 0 {
		return domain.Expense{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	next := slices.Clone(j.st.expenses)
	next[i] = e
	if err := j.st.save(ctx, repository.Expenses(next)); err != nil {
		return domain.Expense{}, err
	}
	j.st.expenses = next
	return e, nil
}

func (j *Journal) Delete(ctx context.Context, id string) error {
	j.st.mu.Lock()
	defer j.st.mu.Unlock()

	i := j.index(id)
	if i < 0 {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(j.st.expenses), i, i+1)
	if err := j.st.save(ctx, repository.Expenses(next)); err != nil {
		return err
	}
	j.st.expenses = next
	return nil
}

func (j *Journal) index(id string) int {
	return slices.IndexFunc(j.st.expenses, func(e domain.Expense) bool { return e.ID == id })
}

// build validates in. A zero date means today.
func (j *Journal) build(id string, in ExpenseInput) (domain.Expense, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Expense{}, invalid("expense name is required")
	}
	if in.Amount.IsNegative() {
		return domain.Expense{}, invalid("amount must be >= 0")
	}
	date := in.Date
	if date.IsZero() {
		date = j.st.today()
	}
	return domain.Expense{ID: id, Name: name, Amount: in.Amount, Date: date}, nil
}
