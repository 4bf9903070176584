package state

import (
	"fmt"
	"math/big"
)

// Vault is the account-backed fund vault: deposits move funds from an
// identity's account to the vault account, withdrawals the reverse. Mutations
// flow through the MarketState journal, so a failed engine call reverts them
// together with the rest of the operation.
type Vault struct {
	state *MarketState
	addr  [20]byte
}

// NewVault binds a vault identity over the supplied state.
func NewVault(state *MarketState, addr [20]byte) *Vault {
	return &Vault{state: state, addr: addr}
}

// Address returns the vault identity holding escrowed funds.
func (v *Vault) Address() [20]byte { return v.addr }

// Deposit pulls funds from the identity into the vault.
func (v *Vault) Deposit(from [20]byte, amount *big.Int) error {
	return v.transfer(from, v.addr, amount)
}

// Withdraw pays out from the vault to the identity.
func (v *Vault) Withdraw(to [20]byte, amount *big.Int) error {
	return v.transfer(v.addr, to, amount)
}

// Balance reports the fund balance of the identity.
func (v *Vault) Balance(addr [20]byte) (*big.Int, error) {
	account, err := v.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}

// Credit mints funds onto an identity's account. Bootstrap and test helper.
func (v *Vault) Credit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: credit amount must be positive")
	}
	account, err := v.state.GetAccount(addr)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	return v.state.PutAccount(addr, account)
}

func (v *Vault) transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	// A self-transfer would load both sides before either write and the
	// second write would mint the amount. Nothing moves, so skip it.
	if from == to {
		return nil
	}
	fromAccount, err := v.state.GetAccount(from)
	if err != nil {
		return err
	}
	if fromAccount.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("state: insufficient balance")
	}
	toAccount, err := v.state.GetAccount(to)
	if err != nil {
		return err
	}
	fromAccount.Balance = new(big.Int).Sub(fromAccount.Balance, amount)
	toAccount.Balance = new(big.Int).Add(toAccount.Balance, amount)
	if err := v.state.PutAccount(from, fromAccount); err != nil {
		return err
	}
	return v.state.PutAccount(to, toAccount)
}
