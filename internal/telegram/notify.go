// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"minishop/internal/models"
)

// Notifier posts new-order messages to the shop's Telegram chat via the
// Bot API. Notification failures are logged, never surfaced to shoppers.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
	apiBase  string
}

// NewNotifier creates a Notifier. Returns nil when the orders chat is not
// configured, so callers can skip notification entirely.
func NewNotifier(botToken, chatID string) *Notifier {
	if botToken == "" || chatID == "" {
		return nil
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
		apiBase:  "https://api.telegram.org",
	}
}

// NotifyNewOrder sends a plain-text summary of a freshly placed order.
func (n *Notifier) NotifyNewOrder(order *models.Order, user *User) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", order.ID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", order.CustomerName, order.Phone)
	if user != nil && user.Username != "" {
		fmt.Fprintf(&b, "Telegram: @%s\n", user.Username)
	}
	if order.DeliveryNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", order.DeliveryNote)
	}
	b.WriteString("\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s: %.2f\n", item.Quantity, item.Name, item.UnitPrice)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f", order.Total)

	if err := n.sendMessage(ctx, b.String()); err != nil {
		slog.Error("order notification failed", "order", order.ID, "error", err)
	}
}

func (n *Notifier) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}
