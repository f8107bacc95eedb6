package services

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier доставка сводок
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
	SendDocument(ctx context.Context, fileName string, data []byte) error
}

// TelegramNotifier отправка сводок в чат Telegram
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier создает клиент Telegram бота для чата chatID
func NewTelegramNotifier(token, chatID string, logger *zap.Logger) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("неверный chat ID: %s", chatID)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram бота: %w", err)
	}

	// В продакшене отключаем debug
	bot.Debug = false

	logger = loggerOrNop(logger)
	logger.Info("✅ Telegram бот авторизован", zap.String("username", bot.Self.UserName))

	return &TelegramNotifier{bot: bot, chatID: id, logger: logger}, nil
}

// SendMessage отправляет HTML сообщение в чат
func (n *TelegramNotifier) SendMessage(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return nil
}

// SendDocument отправляет файл в чат
func (n *TelegramNotifier) SendDocument(_ context.Context, fileName string, data []byte) error {
	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})

	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("ошибка отправки документа: %w", err)
	}
	return nil
}
