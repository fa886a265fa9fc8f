package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	MinWaiterID = 1
	MaxWaiterID = 27

	unassignedTables = "Not assigned"
)

// WaiterInput is the editable part of a waiter.
type WaiterInput struct {
	Name   string
	Shift  string
	Tables string
}

// MenuItemInput is the editable part of a menu item.
type MenuItemInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
	Type     string
}

// MenuFilter narrows ListMenuItems. Empty fields match everything.
type MenuFilter struct {
	Type     string
	Category string
}

// Catalog holds waiters and menu items: the reference data orders are
// composed from. Deleting an entry never touches orders that reference it.
type Catalog struct {
	st *State
}

func NewCatalog(st *State) *Catalog {
	return &Catalog{st: st}
}

// ── Waiters ──

func (c *Catalog) ListWaiters() []domain.Waiter {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return slices.Clone(c.st.waiters)
}

func (c *Catalog) LookupWaiter(id int) (domain.Waiter, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.lookupWaiter(id)
}

func (c *Catalog) lookupWaiter(id int) (domain.Waiter, error) {
	if i := c.waiterIndex(id); i >= 0 {
		return c.st.waiters[i], nil
	}
	return domain.Waiter{}, fmt.Errorf("waiter %d: %w", id, ErrNotFound)
}

func (c *Catalog) waiterIndex(id int) int {
	return slices.IndexFunc(c.st.waiters, func(w domain.Waiter) bool { return w.ID == id })
}

func (c *Catalog) AddWaiter(ctx context.Context, id int, in WaiterInput) (domain.Waiter, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	if id < MinWaiterID || id > MaxWaiterID {
		return domain.Waiter{}, fmt.Errorf("waiter id %d must be between %d and %d: %w", id, MinWaiterID, MaxWaiterID, ErrOutOfRange)
	}
	if c.waiterIndex(id) >= 0 {
		return domain.Waiter{}, fmt.Errorf("waiter id %d is already in use: %w", id, ErrDuplicateID)
	}
	w, err := buildWaiter(id, in)
	if err != nil {
		return domain.Waiter{}, err
	}

	next := append(slices.Clone(c.st.waiters), w)
	if err := c.st.save(ctx, repository.Waiters(next)); err != nil {
		return domain.Waiter{}, err
	}
	c.st.waiters = next
	return w, nil
}

func (c *Catalog) EditWaiter(ctx context.Context, id int, in WaiterInput) (domain.Waiter, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	i := c.waiterIndex(id)
	if i < 0 {
		return domain.Waiter{}, fmt.Errorf("waiter %d: %w", id, ErrNotFound)
	}
	w, err := buildWaiter(id, in)
	if err != nil {
		return domain.Waiter{}, err
	}

	next := slices.Clone(c.st.waiters)
	next[i] = w
	if err := c.st.save(ctx, repository.Waiters(next)); err != nil {
		return domain.Waiter{}, err
	}
	c.st.waiters = next
	return w, nil
}

func (c *Catalog) DeleteWaiter(ctx context.Context, id int) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	i := c.waiterIndex(id)
	if i < 0 {
		return fmt.Errorf("waiter %d: %w", id, ErrNotFound)
	}

	next := slices.Delete(slices.Clone(c.st.waiters), i, i+1)
	if err := c.st.save(ctx, repository.Waiters(next)); err != nil {
		return err
	}
	c.st.waiters = next
	return nil
}

func buildWaiter(id int, in WaiterInput) (domain.Waiter, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Waiter{}, invalid("waiter name is required")
	}
	if !isValidShift(in.Shift) {
		return domain.Waiter{}, invalid("invalid shift %q", in.Shift)
	}
	tables := strings.TrimSpace(in.Tables)
	if tables == "" {
		tables = unassignedTables
	}
	return domain.Waiter{
		ID:     id,
		Name:   name,
		Shift:  in.Shift,
		Tables: tables,
		Color:  domain.ShiftColor(in.Shift),
	}, nil
}

func isValidShift(s string) bool {
	switch s {
	case enum.ShiftMorning, enum.ShiftAfternoon, enum.ShiftEvening, enum.ShiftNight:
		return true
	}
	return false
}

// ── Menu items ──

func (c *Catalog) ListMenuItems(f MenuFilter) []domain.MenuItem {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	out := make([]domain.MenuItem, 0, len(c.st.menuItems))
	for _, m := range c.st.menuItems {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Category != "" && !strings.EqualFold(m.Category, f.Category) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (c *Catalog) LookupMenuItem(id int64) (domain.MenuItem, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.lookupMenuItem(id)
}

func (c *Catalog) lookupMenuItem(id int64) (domain.MenuItem, error) {
	if i := c.menuItemIndex(id); i >= 0 {
		return c.st.menuItems[i], nil
	}
	return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
}

func (c *Catalog) menuItemIndex(id int64) int {
	return slices.IndexFunc(c.st.menuItems, func(m domain.MenuItem) bool { return m.ID == id })
}

// AddMenuItem assigns a millisecond-timestamp id, bumped past the largest
// existing id when two items are created within the same millisecond.
func (c *Catalog) AddMenuItem(ctx context.Context, in MenuItemInput) (domain.MenuItem, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	id := c.st.now().UnixMilli()
	for _, m := range c.st.menuItems {
		if m.ID >= id {
			id = m.ID + 1
		}
	}
	item, err := buildMenuItem(id, in)
	if err != nil {
		return domain.MenuItem{}, err
	}

	next := append(slices.Clone(c.st.menuItems), item)
	if err := c.st.save(ctx, repository.MenuItems(next)); err != nil {
		return domain.MenuItem{}, err
	}
	c.st.menuItems = next
	return item, nil
}

func (c *Catalog) EditMenuItem(ctx context.Context, id int64, in MenuItemInput) (domain.MenuItem, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	i := c.menuItemIndex(id)
	if i < 0 {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	item, err := buildMenuItem(id, in)
	if err != nil {
		return domain.MenuItem{}, err
	}

	next := slices.Clone(c.st.menuItems)
	next[i] = item
	if err := c.st.save(ctx, repository.MenuItems(next)); err != nil {
		return domain.MenuItem{}, err
	}
	c.st.menuItems = next
	return item, nil
}

func (c *Catalog) DeleteMenuItem(ctx context.Context, id int64) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	i := c.menuItemIndex(id)
	if i < 0 {
		return fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}

	next := slices.Delete(slices.Clone(c.st.menuItems), i, i+1)
	if err := c.st.save(ctx, repository.MenuItems(next)); err != nil {
		return err
	}
	c.st.menuItems = next
	return nil
}

func buildMenuItem(id int64, in MenuItemInput) (domain.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.MenuItem{}, invalid("menu item name is required")
	}
	if in.Price.IsNegative() {
		return domain.MenuItem{}, invalid("price must be >= 0")
	}
	typ := in.Type
	if typ == "" {
		typ = enum.MenuItemTypeFood
	}
	if !isValidMenuItemType(typ) {
		return domain.MenuItem{}, invalid("invalid menu item type %q", in.Type)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = enum.DefaultCategory
	}
	return domain.MenuItem{
		ID:       id,
		Name:     name,
		Price:    in.Price,
		Category: category,
		Type:     typ,
	}, nil
}

func isValidMenuItemType(t string) bool {
	switch t {
	case enum.MenuItemTypeFood, enum.MenuItemTypeDrink, enum.MenuItemTypeService:
		return true
	}
	return false
}
