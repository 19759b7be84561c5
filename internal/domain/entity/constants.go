package entity

// Status values for Claim. These are wire values; they appear in the
// store, the API, and the audit trail.
const (
	StatusPending             = "pending"
	StatusCoordinatorApproved = "coordinator_approved"
	StatusCoordinatorRejected = "coordinator_rejected"
	StatusHRApproved          = "hr_approved"
	StatusHRRejected          = "hr_rejected"
	StatusAccountsApproved    = "accounts_approved"
	StatusAccountsRejected    = "accounts_rejected"
)

// Role values for User and Actor.
const (
	RoleUser        = "user"
	RoleCoordinator = "coordinator"
	RoleHR          = "hr"
	RoleAccounts    = "accounts"
	RoleAdmin       = "admin"
)

// Receipt kinds accepted on a claim.
const (
	ReceiptHotel     = "hotel"
	ReceiptFood      = "food"
	ReceiptTransport = "transport"
)
