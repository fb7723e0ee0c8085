package model

/* ========================================================================
 * Domain Enumerations
 * ========================================================================
 * Stored as lowercase strings; the DDL carries matching CHECK
 * constraints so bad values cannot land even through raw SQL.
 * ======================================================================== */

// AccountType classifies an account.
type AccountType string

const (
	AccountTypeChecking  AccountType = "checking"
	AccountTypeSavings   AccountType = "savings"
	AccountTypeCredit    AccountType = "credit"
	AccountTypeDebit     AccountType = "debit"
	AccountTypeUndefined AccountType = "undefined"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit,
		AccountTypeDebit, AccountTypeUndefined:
		return true
	}
	return false
}

// TransactionState tracks where a transaction sits in its lifecycle.
type TransactionState string

const (
	TransactionStateOutstanding TransactionState = "outstanding"
	TransactionStateFuture      TransactionState = "future"
	TransactionStateCleared     TransactionState = "cleared"
	TransactionStateUndefined   TransactionState = "undefined"
)

// Valid reports whether s is a known transaction state.
func (s TransactionState) Valid() bool {
	switch s {
	case TransactionStateOutstanding, TransactionStateFuture,
		TransactionStateCleared, TransactionStateUndefined:
		return true
	}
	return false
}

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	TransactionTypeExpense   TransactionType = "expense"
	TransactionTypeIncome    TransactionType = "income"
	TransactionTypeTransfer  TransactionType = "transfer"
	TransactionTypeUndefined TransactionType = "undefined"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome,
		TransactionTypeTransfer, TransactionTypeUndefined:
		return true
	}
	return false
}

// ReoccurringType marks recurring transactions.
type ReoccurringType string

const (
	ReoccurringTypeOnetime   ReoccurringType = "onetime"
	ReoccurringTypeMonthly   ReoccurringType = "monthly"
	ReoccurringTypeAnnually  ReoccurringType = "annually"
	ReoccurringTypeBiAnnual  ReoccurringType = "biannually"
	ReoccurringTypeFortnight ReoccurringType = "fortnightly"
	ReoccurringTypeQuarterly ReoccurringType = "quarterly"
	ReoccurringTypeUndefined ReoccurringType = "undefined"
)

// Valid reports whether r is a known reoccurring type.
func (r ReoccurringType) Valid() bool {
	switch r {
	case ReoccurringTypeOnetime, ReoccurringTypeMonthly, ReoccurringTypeAnnually,
		ReoccurringTypeBiAnnual, ReoccurringTypeFortnight, ReoccurringTypeQuarterly,
		ReoccurringTypeUndefined:
		return true
	}
	return false
}

// Relationship ties a family member to the owner.
type Relationship string

const (
	RelationshipSelf      Relationship = "self"
	RelationshipSpouse    Relationship = "spouse"
	RelationshipChild     Relationship = "child"
	RelationshipDependent Relationship = "dependent"
	RelationshipOther     Relationship = "other"
)

// Valid reports whether r is a known relationship.
func (r Relationship) Valid() bool {
	switch r {
	case RelationshipSelf, RelationshipSpouse, RelationshipChild,
		RelationshipDependent, RelationshipOther:
		return true
	}
	return false
}

// ClaimStatus tracks an insurance claim.
type ClaimStatus string

const (
	ClaimStatusSubmitted  ClaimStatus = "submitted"
	ClaimStatusProcessing ClaimStatus = "processing"
	ClaimStatusApproved   ClaimStatus = "approved"
	ClaimStatusDenied     ClaimStatus = "denied"
	ClaimStatusPaid       ClaimStatus = "paid"
	ClaimStatusClosed     ClaimStatus = "closed"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusProcessing, ClaimStatusApproved,
		ClaimStatusDenied, ClaimStatusPaid, ClaimStatusClosed:
		return true
	}
	return false
}

// ImageFormat names a stored receipt image format.
type ImageFormat string

const (
	ImageFormatJpeg      ImageFormat = "jpeg"
	ImageFormatPng       ImageFormat = "png"
	ImageFormatUndefined ImageFormat = "undefined"
)

// Valid reports whether f is a known image format.
func (f ImageFormat) Valid() bool {
	switch f {
	case ImageFormatJpeg, ImageFormatPng, ImageFormatUndefined:
		return true
	}
	return false
}
