package tool

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Demo tools for the order-support scenario: look up an order id by customer
// name, then resolve its estimated delivery date. Both are simulations with
// deterministic outputs so multi-round tool conversations can be exercised
// without a backing service.

// NewFindOrderTool returns the find_order_by_name tool. The simulated order
// id is derived from the customer name so repeated lookups agree.
func NewFindOrderTool() *FunctionTool {
	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer_name": map[string]any{
				"type":        "string",
				"description": "The customer's full name.",
			},
		},
		"required": []string{"customer_name"},
	}

	return NewFunctionTool(
		"find_order_by_name",
		"Finds the most recent order ID for a given customer name.",
		parameters,
		func(_ context.Context, args map[string]any) (any, error) {
			name, _ := args["customer_name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("customer_name must not be empty")
			}

			prefix := strings.ToUpper(name)
			if len(prefix) > 3 {
				prefix = prefix[:3]
			}
			orderID := fmt.Sprintf("ORD-%s%02d", prefix, len(name)%100)

			return map[string]any{"order_id": orderID}, nil
		},
	)
}

// NewDeliveryDateTool returns the get_delivery_date tool. Delivery is
// simulated as three days from now, formatted as a UTC calendar date.
func NewDeliveryDateTool(optFns ...func(o *DeliveryDateOptions)) *FunctionTool {
	opts := DeliveryDateOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}

	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"order_id": map[string]any{
				"type":        "string",
				"description": "The customer's order ID.",
			},
		},
		"required": []string{"order_id"},
	}

	return NewFunctionTool(
		"get_delivery_date",
		"Get the estimated delivery date for a customer's order.",
		parameters,
		func(_ context.Context, args map[string]any) (any, error) {
			orderID, _ := args["order_id"].(string)
			if !strings.HasPrefix(orderID, "ORD-") {
				return nil, fmt.Errorf("Invalid order_id format: '%s'.", orderID)
			}

			delivery := opts.Now().UTC().AddDate(0, 0, 3)

			return map[string]any{
				"order_id":      orderID,
				"delivery_date": delivery.Format("2006-01-02"),
			}, nil
		},
	)
}

// DeliveryDateOptions configures NewDeliveryDateTool.
type DeliveryDateOptions struct {
	// Now supplies the current time, for tests.
	Now func() time.Time
}
