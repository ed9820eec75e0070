package domain

// Role represents a member's role within a jar
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// roleRanks defines the strict role hierarchy used for role-level checks
var roleRanks = map[Role]int{
	RoleMember: 0,
	RoleAdmin:  1,
	RoleOwner:  2,
}

// Rank returns the hierarchy rank of a role (-1 for unknown roles)
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Capability represents something an actor must hold before
// performing an operation against a jar
type Capability string

const (
	CapMember           Capability = "member"
	CapDeposit          Capability = "deposit"
	CapWithdraw         Capability = "withdraw"
	CapInvite           Capability = "invite"
	CapViewTransactions Capability = "view_transactions"
	CapAdmin            Capability = "admin"
	CapOwner            Capability = "owner"
)

// Currency is an ISO-4217 currency code supported by jars
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// SupportedCurrencies lists all currencies a jar may be created with
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyCAD, CurrencyEUR, CurrencyGBP}

// Valid reports whether the currency is supported
func (c Currency) Valid() bool {
	for _, cur := range SupportedCurrencies {
		if c == cur {
			return true
		}
	}
	return false
}
