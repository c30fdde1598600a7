package asaas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/carplusapp/carplus-backend/pkg/config"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
	"github.com/carplusapp/carplus-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAPIKeyRequired  = errors.New("asaas api key is required")
	errInvalidAsaasEnv = fmt.Errorf("asaas environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired  = errors.New("asaas logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://sandbox.asaas.com/api/v3",
	productionEnv: "https://api.asaas.com/v3",
}

// Client exposes the Asaas transfer primitives with centralized auth,
// logging, and error mapping. The API key never leaves this process; callers
// only see transfer objects and domain errors.
type Client struct {
	http        *resty.Client
	environment string
	baseURL     string
	logger      *logger.Logger
}

// NewClient initializes the Asaas wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.AsaasConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	baseURL := baseURLs[env]
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("access_token", apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http:        httpClient,
		environment: env,
		baseURL:     baseURL,
		logger:      logg,
	}

	logg.Info(ctx, "asaas client initialized")
	return c, nil
}

// Environment reports the normalized Asaas environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateTransfer issues one PIX transfer. The caller owns retry policy: a
// transport failure here is ambiguous and must never be replayed blindly.
func (c *Client) CreateTransfer(ctx context.Context, params TransferCreateParams) (*Transfer, error) {
	if err := params.validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer request")
	}

	c.log(ctx, "request", "create_transfer", map[string]any{
		"value":        params.Value.StringFixed(2),
		"pix_key":      params.PixAddressKey,
		"pix_key_type": params.PixAddressKeyType.String(),
	})

	var transfer Transfer
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(params.toRequest()).
		SetResult(&transfer).
		SetError(&apiErr).
		Post("/transfers")
	if err != nil {
		c.log(ctx, "error", "create_transfer", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "asaas create transfer failed")
	}
	if resp.IsError() {
		return nil, c.mapAPIError(ctx, resp.StatusCode(), &apiErr, "create_transfer")
	}

	c.log(ctx, "response", "create_transfer", map[string]any{
		"transfer_id": transfer.ID,
		"status":      transfer.Status.String(),
	})
	return &transfer, nil
}

// GetTransfer fetches the current state of a previously created transfer.
func (c *Client) GetTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	if strings.TrimSpace(transferID) == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errTransferIDRequired, "invalid transfer lookup")
	}

	c.log(ctx, "request", "get_transfer", map[string]any{"transfer_id": transferID})

	var transfer Transfer
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&transfer).
		SetError(&apiErr).
		Get("/transfers/" + transferID)
	if err != nil {
		c.log(ctx, "error", "get_transfer", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "asaas get transfer failed")
	}
	if resp.IsError() {
		return nil, c.mapAPIError(ctx, resp.StatusCode(), &apiErr, "get_transfer")
	}

	c.log(ctx, "response", "get_transfer", map[string]any{
		"transfer_id": transfer.ID,
		"status":      transfer.Status.String(),
	})
	return &transfer, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("asaas %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("asaas %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"pix_key", "token", "secret", "document", "email", "phone"} {
		if strings.Contains(lower, sensitive) && lower != "pix_key_type" {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapAPIError(ctx context.Context, status int, apiErr *errorResponse, op string) error {
	message := apiErr.message()
	if message == "" {
		message = http.StatusText(status)
	}
	c.log(ctx, "error", op, map[string]any{
		"status": status,
		"error":  message,
	})
	code := domainCodeForStatus(status)
	err := pkgerrors.Wrap(code, fmt.Errorf("asaas responded %d", status),
		fmt.Sprintf("asaas %s failed: %s", strings.ReplaceAll(op, "_", " "), message))
	if len(apiErr.Errors) > 0 {
		err = err.WithDetails(map[string]any{"errors": apiErr.Errors})
	}
	return err
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	}
	return "", errInvalidAsaasEnv
}
