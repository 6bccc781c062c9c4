// Package command parses the free text instruction carried by a claim email.
package command

import (
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ErrInvalidCommand declares that a text does not follow the claim grammar.
var ErrInvalidCommand = errors.New("invalid command")

// E.g. Claim ENS name for address 0xafBD210c60dD651892a61804A989eEF7bD63CBA0 with resolver resolver.eth
const claimTemplate = "Claim ENS name for address %s with resolver %s"

var claimPattern = regexp.MustCompile(`^Claim ENS name for address (?P<address>0x[a-fA-F0-9]{40}) with resolver (?P<resolver>\S+)$`)

// Action is the claim requested by a command.
type Action struct {
	// Address is kept exactly as written in the command.
	Address  string
	Resolver string
}

// HexAddress returns the address as an ethereum address value.
func (a Action) HexAddress() common.Address {
	return common.HexToAddress(a.Address)
}

// String renders the canonical command text of the action.
func (a Action) String() string {
	return Compose(a.Address, a.Resolver)
}

// Parse extracts the claim action from text. The whole text must match.
func Parse(text string) (Action, error) {
	m := claimPattern.FindStringSubmatch(text)
	if m == nil {
		return Action{}, errors.Wrapf(ErrInvalidCommand, "%q", text)
	}
	return Action{
		Address:  m[claimPattern.SubexpIndex("address")],
		Resolver: m[claimPattern.SubexpIndex("resolver")],
	}, nil
}

// Compose builds the command text for address and resolver verbatim.
func Compose(address, resolver string) string {
	return fmt.Sprintf(claimTemplate, address, resolver)
}
