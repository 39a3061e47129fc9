package handler

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token   string           `json:"token"`
	UserID  string           `json:"user_id"`
	Account *AccountResponse `json:"account,omitempty"`
}

// RegisterResponse represents a newly registered user and their account
type RegisterResponse struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Account  AccountResponse `json:"account"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DepositRequest represents a deposit into an account. AccountID is optional
// and defaults to the caller's own account.
type DepositRequest struct {
	AccountID string `json:"account_id,omitempty" binding:"omitempty,uuid"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// WithdrawRequest represents a withdrawal from the caller's account
type WithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferRequest represents a transfer from the caller's account
type TransferRequest struct {
	RecipientAccountID string `json:"recipient_account_id" binding:"required,uuid"`
	Amount             int64  `json:"amount" binding:"required,gt=0"`
}

// ReversalRequest represents a request to reverse a committed movement
type ReversalRequest struct {
	Reference string `json:"reference" binding:"required,uuid"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID            string            `json:"id"`
	Reference     string            `json:"reference"`
	AccountID     string            `json:"account_id"`
	Direction     string            `json:"direction"`
	Purpose       string            `json:"purpose"`
	Amount        int64             `json:"amount"`
	BalanceBefore int64             `json:"balance_before"`
	BalanceAfter  int64             `json:"balance_after"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// MovementResponse represents a committed movement in API responses
type MovementResponse struct {
	Reference   string          `json:"reference"`
	Purpose     string          `json:"purpose"`
	Entries     []EntryResponse `json:"entries"`
	CommittedAt string          `json:"committed_at"`
}

// EntryListResponse represents a list of entries in API responses
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
