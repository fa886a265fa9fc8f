package enum

// ── Order lifecycle ──

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// ── Payment methods (simulated confirmations, no gateway) ──

const (
	PaymentMethodCash   = "cash"
	PaymentMethodMPesa  = "mpesa"
	PaymentMethodAirtel = "airtel"
	PaymentMethodTigo   = "tigo"
	PaymentMethodHalo   = "halo"
)

// ── Staff ──

const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftEvening   = "evening"
	ShiftNight     = "night"
)

const (
	ShiftColorMorning   = "#4361ee"
	ShiftColorAfternoon = "#f72585"
	ShiftColorNight     = "#4cc9f0"
	ShiftColorDefault   = "#6c757d"
)

// ── Menu ──

const (
	MenuItemTypeFood    = "food"
	MenuItemTypeDrink   = "drink"
	MenuItemTypeService = "service"
)

const DefaultCategory = "Uncategorized"

// ── Plans ──

const (
	PlanBasic        = "Basic"
	PlanProfessional = "Professional"
	PlanEnterprise   = "Enterprise"
)

// ── Storage keys ──

const (
	KeyOrders        = "orders"
	KeyWaiters       = "waiters"
	KeyMenuItems     = "menuItems"
	KeyExpenses      = "expenses"
	KeySubscription  = "subscription"
	KeyWalletBalance = "wallet_balance"
	KeyVouchers      = "vouchers"
	KeyLastReset     = "last_reset_date"
	KeyCurrentUser   = "current_user"
)

// Names the browser app used where they differ from the keys above.
const (
	LegacyKeyWalletBalance = "walletBalance"
	LegacyKeyLastReset     = "lastReset"
	LegacyKeyCurrentUser   = "user"
)

// ── Events ──

const (
	EventOrderPlaced          = "order.placed"
	EventOrderUpdated         = "order.updated"
	EventOrderPaid            = "order.paid"
	EventOrderDeleted         = "order.deleted"
	EventSubscriptionUpgraded = "subscription.upgraded"
	EventSubscriptionRollover = "subscription.rollover"
)
