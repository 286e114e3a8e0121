package services

import (
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentGateway — внешний платежный шлюз. Создание заказа уходит в шлюз,
// проверка подписи остается на нашей стороне.
type PaymentGateway interface {
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) PaymentGateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("gateway order create failed: %w", err)
	}

	id, ok := order["id"].(string)
	if !ok || id == "" {
		return "", errors.New("gateway order response missing id")
	}
	return id, nil
}
