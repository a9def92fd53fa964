package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// homeDelivery is the courier's delivery type for door-step delivery.
const homeDelivery = 0

// defaultCourierNote is sent when the order carries no note.
const defaultCourierNote = "Handle with care"

// CourierOrderRequest is the consignment creation payload.
type CourierOrderRequest struct {
	Invoice          string          `json:"invoice"`
	RecipientName    string          `json:"recipient_name"`
	RecipientPhone   string          `json:"recipient_phone"`
	RecipientAddress string          `json:"recipient_address"`
	CODAmount        decimal.Decimal `json:"cod_amount"`
	Note             string          `json:"note"`
	DeliveryType     int             `json:"delivery_type"`
}

// CourierConsignment is what the gateway returns for a created order.
type CourierConsignment struct {
	ConsignmentID string
	TrackingCode  string
	Status        string
}

// CourierClient talks to the courier gateway.
type CourierClient interface {
	CreateOrder(ctx context.Context, req *CourierOrderRequest) (*CourierConsignment, error)
	DeliveryStatus(ctx context.Context, consignmentID string) (string, error)
}

// steadfastClient implements CourierClient against the Steadfast portal API.
type steadfastClient struct {
	baseURL   string
	apiKey    string
	secretKey string
	client    *http.Client
}

// NewSteadfastClient creates a courier client for the portal API.
func NewSteadfastClient(baseURL, apiKey, secretKey string) CourierClient {
	return &steadfastClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// steadfastCreateResponse mirrors the portal's create_order response.
type steadfastCreateResponse struct {
	Status      int `json:"status"`
	Consignment struct {
		ConsignmentID json.Number `json:"consignment_id"`
		TrackingCode  string      `json:"tracking_code"`
		Status        string      `json:"status"`
	} `json:"consignment"`
}

// steadfastStatusResponse mirrors the portal's status_by_cid response.
type steadfastStatusResponse struct {
	Status         int    `json:"status"`
	DeliveryStatus string `json:"delivery_status"`
}

// CreateOrder registers a consignment with the portal.
func (c *steadfastClient) CreateOrder(ctx context.Context, req *CourierOrderRequest) (*CourierConsignment, error) {
	var out steadfastCreateResponse
	if err := c.post(ctx, "/create_order", req, &out); err != nil {
		return nil, err
	}
	if out.Status != http.StatusOK {
		return nil, fmt.Errorf("%w: create_order returned status %d", ErrCourier, out.Status)
	}
	return &CourierConsignment{
		ConsignmentID: out.Consignment.ConsignmentID.String(),
		TrackingCode:  out.Consignment.TrackingCode,
		Status:        out.Consignment.Status,
	}, nil
}

// DeliveryStatus polls the portal for a consignment's delivery status.
func (c *steadfastClient) DeliveryStatus(ctx context.Context, consignmentID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status_by_cid/"+consignmentID, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCourier, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCourier, err)
	}
	defer resp.Body.Close()

	var out steadfastStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode status response: %v", ErrCourier, err)
	}
	if out.Status != http.StatusOK {
		return "", fmt.Errorf("%w: status_by_cid returned status %d", ErrCourier, out.Status)
	}
	return out.DeliveryStatus, nil
}

// post sends a JSON request with the portal's auth headers.
func (c *steadfastClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrCourier, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCourier, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCourier, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrCourier, err)
	}
	return nil
}

// setHeaders applies the portal's API credentials.
func (c *steadfastClient) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Secret-Key", c.secretKey)
	req.Header.Set("Content-Type", "application/json")
}

// CourierWebhook is the asynchronous push payload. The portal does not sign
// webhooks, so this only ever touches the mirror fields.
type CourierWebhook struct {
	ConsignmentID json.Number `json:"consignment_id"`
	Status        string      `json:"status"`
}

// CourierStatusResult reports a poll outcome.
type CourierStatusResult struct {
	CourierStatus string       `json:"courier_status"`
	LocalStatus   model.Status `json:"local_status"`
}

// CourierService bridges the ledger and the courier gateway. Local lifecycle
// changes always go through the order service so the inventory rules apply.
type CourierService interface {
	Dispatch(ctx context.Context, orderID string) (*model.Order, error)
	CheckStatus(ctx context.Context, orderID string) (*CourierStatusResult, error)
	HandleWebhook(ctx context.Context, payload *CourierWebhook) error
}

// courierServiceImpl is the gorm-backed courier bridge.
type courierServiceImpl struct {
	db     *gorm.DB
	orders OrderService
	client CourierClient
	logger *slog.Logger
}

// NewCourierService creates a new courier bridge.
func NewCourierService(db *gorm.DB, orders OrderService, client CourierClient, logger *slog.Logger) CourierService {
	return &courierServiceImpl{db: db, orders: orders, client: client, logger: logger}
}

// Dispatch sends an order to the courier and transitions it to Shipped.
func (s *courierServiceImpl) Dispatch(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CourierConsignmentID != "" {
		return nil, ErrAlreadyConsigned
	}

	note := order.Note
	if note == "" {
		note = defaultCourierNote
	}
	consignment, err := s.client.CreateOrder(ctx, &CourierOrderRequest{
		Invoice:          strconv.Itoa(order.OrderID),
		RecipientName:    order.Name,
		RecipientPhone:   order.Phone,
		RecipientAddress: order.Address,
		CODAmount:        order.TotalValue,
		Note:             note,
		DeliveryType:     homeDelivery,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"courier_consignment_id": consignment.ConsignmentID,
			"courier_tracking_code":  consignment.TrackingCode,
			"courier_status":         consignment.Status,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to store consignment: %w", err)
	}

	updated, err := s.orders.UpdateStatus(ctx, order.ID, model.StatusShipped)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CheckStatus polls the courier for an order and maps the remote delivery
// status onto the local lifecycle.
func (s *courierServiceImpl) CheckStatus(ctx context.Context, orderID string) (*CourierStatusResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CourierConsignmentID == "" {
		return nil, fmt.Errorf("%w: no courier data for this order", ErrNotFound)
	}

	deliveryStatus, err := s.client.DeliveryStatus(ctx, order.CourierConsignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("courier_status", deliveryStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to store courier status: %w", err)
	}

	result := &CourierStatusResult{CourierStatus: deliveryStatus, LocalStatus: order.Status}
	if local, ok := mapCourierStatus(deliveryStatus); ok && local != order.Status {
		updated, err := s.orders.UpdateStatus(ctx, order.ID, local)
		if err != nil {
			if errors.Is(err, ErrIllegalTransition) {
				s.logger.Warn("courier status does not map onto the local lifecycle",
					"order_id", order.OrderID, "courier_status", deliveryStatus,
					"local_status", order.Status)
				return result, nil
			}
			return nil, err
		}
		result.LocalStatus = updated.Status
	}
	return result, nil
}

// HandleWebhook applies an asynchronous courier push. Unsigned upstream, so
// it only updates the mirror fields and never the local lifecycle.
func (s *courierServiceImpl) HandleWebhook(ctx context.Context, payload *CourierWebhook) error {
	if payload.ConsignmentID.String() == "" || payload.Status == "" {
		return fmt.Errorf("%w: consignment_id and status are required", ErrInvalidInput)
	}

	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("courier_consignment_id = ?", payload.ConsignmentID.String()).
		UpdateColumn("courier_status", payload.Status)
	if res.Error != nil {
		return fmt.Errorf("failed to apply courier webhook: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("courier webhook for unknown consignment",
			"consignment_id", payload.ConsignmentID.String())
	}
	return nil
}

// mapCourierStatus translates the portal's delivery status to the local
// lifecycle. Partial deliveries count as delivered.
func mapCourierStatus(deliveryStatus string) (model.Status, bool) {
	switch deliveryStatus {
	case "delivered", "partial_delivered":
		return model.StatusDelivered, true
	case "cancelled":
		return model.StatusCancelled, true
	default:
		return "", false
	}
}
