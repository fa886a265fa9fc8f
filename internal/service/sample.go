package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

// SampleData is the demo data set: three waiters, five menu items, two
// orders, two expenses and two vouchers, all dated today.
func SampleData(now time.Time, loc *time.Location) repository.Snapshot {
	today := domain.DateOf(now, loc)
	d := decimal.NewFromInt

	waiter := func(id int, name, shift, tables string) domain.Waiter {
		return domain.Waiter{ID: id, Name: name, Shift: shift, Tables: tables, Color: domain.ShiftColor(shift)}
	}
	waiters := []domain.Waiter{
		waiter(1, "John Doe", enum.ShiftMorning, "1-5,10"),
		waiter(2, "Jane Smith", enum.ShiftAfternoon, "6-9,12"),
		waiter(3, "Mike Johnson", enum.ShiftNight, "11,13-15"),
	}

	menu := []domain.MenuItem{
		{ID: 1, Name: "Chicken Curry", Price: d(12000), Category: "Main Course", Type: enum.MenuItemTypeFood},
		{ID: 2, Name: "Beef Steak", Price: d(15000), Category: "Main Course", Type: enum.MenuItemTypeFood},
		{ID: 3, Name: "Vegetable Soup", Price: d(8000), Category: "Starter", Type: enum.MenuItemTypeFood},
		{ID: 4, Name: "Soda", Price: d(2000), Category: "Beverages", Type: enum.MenuItemTypeDrink},
		{ID: 5, Name: "Room Service", Price: d(5000), Category: "Services", Type: enum.MenuItemTypeService},
	}

	line := func(m domain.MenuItem, qty int) domain.LineItem {
		return domain.LineItem{MenuItemID: m.ID, Name: m.Name, Quantity: qty, UnitPrice: m.Price}
	}
	first := []domain.LineItem{line(menu[0], 2), line(menu[3], 2)}
	second := []domain.LineItem{line(menu[1], 1), line(menu[2], 1)}

	orders := []domain.Order{
		{
			ID:            "ORD-1001",
			CreatedAt:     domain.NewTimestamp(now),
			WaiterName:    waiters[0].Name,
			WaiterID:      waiters[0].ID,
			Table:         5,
			Items:         first,
			Total:         domain.TotalOf(first),
			PaymentMethod: enum.PaymentMethodMPesa,
			Status:        enum.OrderStatusCompleted,
		},
		{
			ID:            "ORD-1002",
			CreatedAt:     domain.NewTimestamp(now),
			WaiterName:    waiters[1].Name,
			WaiterID:      waiters[1].ID,
			Table:         8,
			Items:         second,
			Total:         domain.TotalOf(second),
			PaymentMethod: enum.PaymentMethodCash,
			Status:        enum.OrderStatusPending,
		},
	}

	expenses := []domain.Expense{
		{ID: uuid.NewString(), Name: "Groceries", Amount: d(50000), Date: today},
		{ID: uuid.NewString(), Name: "Utilities", Amount: d(15000), Date: today},
	}

	vouchers := []domain.Voucher{
		{ID: "VOU-5001", Date: domain.NewTimestamp(now), Orders: 250, Price: d(5000), Remaining: 150},
		{ID: "VOU-5002", Date: domain.NewTimestamp(now), Orders: 500, Price: d(10000), Remaining: 500},
	}

	return repository.Snapshot{
		Waiters:   waiters,
		MenuItems: menu,
		Orders:    orders,
		Expenses:  expenses,
		Vouchers:  vouchers,
	}
}

// SampleChanges turns the demo data set into repository writes.
func SampleChanges(now time.Time, loc *time.Location) []repository.Change {
	s := SampleData(now, loc)
	return []repository.Change{
		repository.Waiters(s.Waiters),
		repository.MenuItems(s.MenuItems),
		repository.Orders(s.Orders),
		repository.Expenses(s.Expenses),
		repository.Vouchers(s.Vouchers),
	}
}
