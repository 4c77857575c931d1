package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Profiles() ProfileRepository
	Providers() ProviderRepository
	Orders() OrderRepository
	Escrows() EscrowRepository
	Refunds() RefundRepository
	Balances() BalanceRepository
	Disputes() DisputeRepository
}
