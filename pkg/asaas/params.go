package asaas

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/enums"
)

var (
	errTransferValueRequired = errors.New("transfer value must be greater than zero")
	errPixKeyRequired        = errors.New("transfer pix address key is required")
	errPixKeyTypeInvalid     = errors.New("transfer pix address key type is invalid")
	errTransferIDRequired    = errors.New("transfer id is required")
	errScheduleDateMalformed = errors.New("transfer schedule date must be YYYY-MM-DD")
)

// TransferCreateParams describes one outbound PIX transfer.
type TransferCreateParams struct {
	Value             decimal.Decimal
	PixAddressKey     string
	PixAddressKeyType enums.PixKeyType
	Description       string
	ScheduleDate      string
}

func (p TransferCreateParams) validate() error {
	if !p.Value.IsPositive() {
		return errTransferValueRequired
	}
	if strings.TrimSpace(p.PixAddressKey) == "" {
		return errPixKeyRequired
	}
	if !p.PixAddressKeyType.IsValid() {
		return errPixKeyTypeInvalid
	}
	if p.ScheduleDate != "" && len(p.ScheduleDate) != len("2006-01-02") {
		return errScheduleDateMalformed
	}
	return nil
}

// transferRequest is the wire shape Asaas expects for POST /transfers.
type transferRequest struct {
	Value             json.Number `json:"value"`
	OperationType     string      `json:"operationType"`
	PixAddressKey     string      `json:"pixAddressKey"`
	PixAddressKeyType string      `json:"pixAddressKeyType"`
	Description       string      `json:"description,omitempty"`
	ScheduleDate      string      `json:"scheduleDate,omitempty"`
}

func (p TransferCreateParams) toRequest() transferRequest {
	return transferRequest{
		Value:             json.Number(p.Value.StringFixed(2)),
		OperationType:     string(enums.PayoutMethodPIX),
		PixAddressKey:     strings.TrimSpace(p.PixAddressKey),
		PixAddressKeyType: p.PixAddressKeyType.String(),
		Description:       p.Description,
		ScheduleDate:      p.ScheduleDate,
	}
}

// Transfer is the subset of the Asaas transfer object the backend consumes.
type Transfer struct {
	ID            string               `json:"id"`
	Value         decimal.Decimal      `json:"value"`
	Status        enums.TransferStatus `json:"status"`
	OperationType string               `json:"operationType"`
	EffectiveDate string               `json:"effectiveDate"`
	TransferDate  string               `json:"transferDate"`
	ScheduleDate  string               `json:"scheduleDate"`
	FailReason    *string              `json:"failReason"`
}

// APIError is one entry of the gateway's error envelope.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type errorResponse struct {
	Errors []APIError `json:"errors"`
}

func (e *errorResponse) message() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Errors))
	for _, apiErr := range e.Errors {
		parts = append(parts, apiErr.Description)
	}
	return strings.Join(parts, "; ")
}
