package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// Movement describes one committed money movement: the reference shared by
// its entries and the entries themselves, in the order they were applied.
type Movement struct {
	Reference   uuid.UUID       `json:"reference"`
	Purpose     ledger.Purpose  `json:"purpose"`
	Entries     []*ledger.Entry `json:"entries"`
	CommittedAt time.Time       `json:"committed_at"`
}

// NetAmount sums the signed amounts of all entries. It is zero for any
// movement that only shifts money between accounts (transfers and their
// reversals).
func (m *Movement) NetAmount() int64 {
	var net int64
	for _, e := range m.Entries {
		net += e.SignedAmount()
	}
	return net
}
