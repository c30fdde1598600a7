package enums

import "fmt"

// TransferStatus mirrors the lifecycle Asaas reports for a PIX transfer.
// Values match the gateway's wire representation so reconciliation can store
// them verbatim.
type TransferStatus string

const (
	TransferStatusPending        TransferStatus = "PENDING"
	TransferStatusBankProcessing TransferStatus = "BANK_PROCESSING"
	TransferStatusDone           TransferStatus = "DONE"
	TransferStatusCancelled      TransferStatus = "CANCELLED"
	TransferStatusFailed         TransferStatus = "FAILED"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusBankProcessing,
	TransferStatusDone,
	TransferStatusCancelled,
	TransferStatusFailed,
}

// IsTerminal reports whether the gateway will never change this status again.
func (t TransferStatus) IsTerminal() bool {
	switch t {
	case TransferStatusDone, TransferStatusCancelled, TransferStatusFailed:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t TransferStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferStatus.
func (t TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
