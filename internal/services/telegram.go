package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/bettashop/internal/models"
)

// TelegramService sends back-office notifications to a Telegram admin chat.
// An unconfigured service silently drops messages so checkout never depends
// on it.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.botToken == "" || s.adminChatID == "" {
		log.Println("[Telegram] Not configured, skipping notification")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    s.adminChatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifyNewOrder announces a freshly placed order.
func (s *TelegramService) NotifyNewOrder(order *models.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🐟 <b>New order %s</b>\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s ×%d — %.2f %s\n", item.TitleSnapshot, item.Qty, item.TotalPrice, order.Currency)
	}
	fmt.Fprintf(&b, "Total: <b>%.2f %s</b>\n", order.GrandTotal, order.Currency)
	fmt.Fprintf(&b, "Payment: %s, status: %s", order.PaymentMethod, order.Status)
	return s.SendToAdmin(b.String())
}

// NotifyPaymentConfirmed announces a confirmed payment.
func (s *TelegramService) NotifyPaymentConfirmed(order *models.Order) error {
	return s.SendToAdmin(fmt.Sprintf(
		"✅ Order <b>%s</b> paid: %.2f %s (%s)",
		order.OrderNumber, order.GrandTotal, order.Currency, order.PaymentMethod,
	))
}
