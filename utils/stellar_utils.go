package utils

import (
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/protocols/horizon"
)

// AccountValidator checks the account a payment claims to have been received on.
type AccountValidator interface {
	ValidateAccount(accountID string) error
}

type accountLoader interface {
	AccountDetail(request horizonclient.AccountRequest) (horizon.Account, error)
}

type StellarClient struct {
	client accountLoader
}

// NewStellarClient validates account ids locally and, when horizonURL is set, also checks
// that the account exists on the network.
func NewStellarClient(horizonURL string) *StellarClient {
	s := &StellarClient{}
	if horizonURL != "" {
		s.client = &horizonclient.Client{HorizonURL: horizonURL}
	}
	return s
}

func (s *StellarClient) ValidateAccount(accountID string) error {
	if _, err := keypair.ParseAddress(accountID); err != nil {
		return fmt.Errorf("not a Stellar public account id: %w", err)
	}
	if s.client == nil {
		return nil
	}
	if _, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID}); err != nil {
		return fmt.Errorf("invalid or non-existent account: %w", err)
	}
	return nil
}
