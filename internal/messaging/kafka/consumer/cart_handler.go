package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-parts-gateway/internal/cart"

	"go.uber.org/zap"
)

const (
	EventCartChanged = "CART_CHANGED"
	EventCartCleared = "CART_CLEARED"
)

var errMalformedEvent = errors.New("malformed cart event")

type cartEventPayload struct {
	UserID string `json:"user_id"`
}

func handleCartEvent(ctx context.Context, payload []byte, cartService cart.Service, logger *zap.Logger) error {
	var data cartEventPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if data.UserID == "" {
		return fmt.Errorf("%w: missing user_id", errMalformedEvent)
	}

	if err := cartService.Invalidate(ctx, data.UserID); err != nil {
		return err
	}

	logger.Debug("cart cache invalidated", zap.String("user_id", data.UserID))
	return nil
}
