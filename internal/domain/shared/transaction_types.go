package shared

// TransactionType defines ledger movement kinds
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal   TransactionType = "WITHDRAWAL"
	TransactionTypePayment      TransactionType = "PAYMENT"
	TransactionTypeCreditCharge TransactionType = "CREDIT_CHARGE"
	TransactionTypeTransferOut  TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn   TransactionType = "TRANSFER_IN"
	TransactionTypeCommission   TransactionType = "COMMISSION"
)

// Sign returns +1 for movements that raise the ledger balance of the affected
// product and -1 for movements that lower it.
func (t TransactionType) Sign() int {
	switch t {
	case TransactionTypeDeposit, TransactionTypePayment, TransactionTypeTransferIn:
		return 1
	case TransactionTypeWithdrawal, TransactionTypeCreditCharge, TransactionTypeTransferOut, TransactionTypeCommission:
		return -1
	}
	return 0
}

// Prefix is the transaction number prefix for the type
func (t TransactionType) Prefix() string {
	switch t {
	case TransactionTypeDeposit:
		return "DEP"
	case TransactionTypeWithdrawal:
		return "WTH"
	case TransactionTypePayment:
		return "PAY"
	case TransactionTypeCreditCharge:
		return "CHG"
	case TransactionTypeTransferOut, TransactionTypeTransferIn:
		return "TRF"
	case TransactionTypeCommission:
		return "COM"
	}
	return "TXN"
}

func (t TransactionType) Valid() bool {
	return t.Sign() != 0
}

// TransactionStatus defines transaction processing states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// ProductType defines the product kinds held by the product service.
// Savings, checking and fixed-term are passive (deposit) products; loans and
// credit cards are active (credit) products.
type ProductType string

const (
	ProductTypeSavings      ProductType = "SAVINGS"
	ProductTypeChecking     ProductType = "CHECKING"
	ProductTypeFixedTerm    ProductType = "FIXED_TERM"
	ProductTypePersonalLoan ProductType = "PERSONAL_LOAN"
	ProductTypeBusinessLoan ProductType = "BUSINESS_LOAN"
	ProductTypeCreditCard   ProductType = "CREDIT_CARD"
)

func (p ProductType) IsPassive() bool {
	switch p {
	case ProductTypeSavings, ProductTypeChecking, ProductTypeFixedTerm:
		return true
	}
	return false
}

func (p ProductType) IsActive() bool {
	switch p {
	case ProductTypePersonalLoan, ProductTypeBusinessLoan, ProductTypeCreditCard:
		return true
	}
	return false
}

func (p ProductType) Valid() bool {
	return p.IsPassive() || p.IsActive()
}

// ProductStatus defines product standing
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "ACTIVE"
	ProductStatusBlocked ProductStatus = "BLOCKED"
	ProductStatusOverdue ProductStatus = "OVERDUE"
	ProductStatusClosed  ProductStatus = "CLOSED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
