package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/logger"
	"presale_webapp/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminBot обрабатывает команды администраторов через Telegram:
// статистика пресейла, просмотр и решение по заявленным покупкам
type AdminBot struct {
	bot          *tgbotapi.BotAPI
	adminService *service.AdminService
	purchases    *service.PurchaseService
	adminIDs     []int64 // Telegram ID пользователей с правами админа
	stopCh       chan struct{}
	wg           sync.WaitGroup
	log          *slog.Logger
}

// NewAdminBot создаёт нового админ бота
func NewAdminBot(token string, adminService *service.AdminService, purchases *service.PurchaseService, adminIDs []int64) (*AdminBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", bot.Self.UserName)

	return &AdminBot{
		bot:          bot,
		adminService: adminService,
		purchases:    purchases,
		adminIDs:     adminIDs,
		stopCh:       make(chan struct{}),
		log:          log,
	}, nil
}

// Start запускает прослушивание команд
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			// Проверка является ли пользователь админом
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	// Ожидание завершения обработчиков с таймаутом
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// handleCommand разбирает команду и отвечает в тот же чат
func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "stats":
		response = b.handleStats(ctx)

	case "pending":
		response = b.handlePending(ctx)

	case "order":
		response = b.handleOrder(ctx, msg.CommandArguments())

	case "approve":
		response = b.handleResolve(ctx, msg.CommandArguments(), service.DecisionApprove)

	case "reject":
		response = b.handleResolve(ctx, msg.CommandArguments(), service.DecisionReject)

	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - общая статистика пресейла

<b>🛒 Покупки:</b>
/pending - ожидающие решения покупки
/order &lt;номер&gt; - детали заказа по номеру
/approve &lt;id&gt; [заметка] - одобрить и зачислить токены
/reject &lt;id&gt; [причина] - отклонить покупку`
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.adminService.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>📊 Статистика пресейла</b>

👥 Пользователей: %d
📨 Подписок с лендинга: %d

🛒 Покупок всего: %d
🛒 Покупок сегодня: %d
⏳ Ожидают решения: %d

🪙 Продано токенов: %s
🪙 Продано сегодня: %s
🪙 Токенов на балансах: %s`,
		stats.TotalUsers,
		stats.TotalSignups,
		stats.PurchasesTotal,
		stats.PurchasesToday,
		stats.PendingPurchases,
		stats.TokensSoldTotal,
		stats.TokensSoldToday,
		stats.TokensInBalances)
}

func (b *AdminBot) handlePending(ctx context.Context) string {
	pending, err := b.purchases.Pending(ctx, 20)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	if len(pending) == 0 {
		return "Нет ожидающих покупок"
	}

	var sb strings.Builder
	sb.WriteString("<b>Ожидающие покупки</b>\n\n")

	for _, p := range pending {
		asset := string(p.CryptoSymbol)
		if p.Network != "" {
			asset += " (" + p.Network + ")"
		}
		sb.WriteString(fmt.Sprintf("#%d | %s\n", p.ID, p.OrderID))
		sb.WriteString(fmt.Sprintf("Пользователь: %d\n", p.UserID))
		sb.WriteString(fmt.Sprintf("Перевод: %s %s\n", p.CryptoAmount.String(), asset))
		sb.WriteString(fmt.Sprintf("Токены: %s + %s бонус = %s\n", p.TokenAmount.String(), p.BonusAmount.String(), p.TotalAmount.String()))
		sb.WriteString(fmt.Sprintf("%s\n\n", p.CreatedAt.Format("02.01.2006 15:04")))
	}

	sb.WriteString("\n/approve &lt;id&gt; — одобрить\n/reject &lt;id&gt; &lt;причина&gt; — отклонить")

	return sb.String()
}

func (b *AdminBot) handleOrder(ctx context.Context, args string) string {
	orderID := strings.TrimSpace(args)
	if orderID == "" {
		return "Использование: /order &lt;номер заказа&gt;"
	}

	p, err := b.purchases.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			return "Заказ не найден"
		}
		return fmt.Sprintf("Ошибка: %v", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Заказ %s</b>\n\n", p.OrderID))
	sb.WriteString(fmt.Sprintf("ID: %d | Пользователь: %d\n", p.ID, p.UserID))
	sb.WriteString(fmt.Sprintf("Статус: %s\n", p.Status))
	sb.WriteString(fmt.Sprintf("Перевод: %s %s", p.CryptoAmount.String(), p.CryptoSymbol))
	if p.Network != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", p.Network))
	}
	sb.WriteString(fmt.Sprintf("\nТокены: %s + %s бонус = %s\n", p.TokenAmount.String(), p.BonusAmount.String(), p.TotalAmount.String()))
	if p.AdminNotes != "" {
		sb.WriteString(fmt.Sprintf("Заметка: %s\n", p.AdminNotes))
	}
	sb.WriteString(fmt.Sprintf("Создан: %s", p.CreatedAt.Format("02.01.2006 15:04")))
	if p.ResolvedAt != nil {
		sb.WriteString(fmt.Sprintf("\nРешение: %s", p.ResolvedAt.Format("02.01.2006 15:04")))
	}

	return sb.String()
}

func (b *AdminBot) handleResolve(ctx context.Context, args string, decision service.Decision) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 1 || parts[0] == "" {
		return fmt.Sprintf("Использование: /%s &lt;id&gt; [заметка]", decision)
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "Неверный ID покупки"
	}

	notes := ""
	if len(parts) == 2 {
		notes = parts[1]
	}

	p, err := b.purchases.Resolve(ctx, id, decision, notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPurchaseNotFound):
			return "Покупка не найдена"
		case errors.Is(err, service.ErrAlreadyResolved):
			return fmt.Sprintf("По покупке #%d решение уже принято", id)
		default:
			return fmt.Sprintf("Ошибка: %v", err)
		}
	}

	if decision == service.DecisionApprove {
		return fmt.Sprintf("Покупка #%d одобрена!\n\nЗаказ: %s\nЗачислено: %s токенов", id, p.OrderID, p.TotalAmount.String())
	}
	return fmt.Sprintf("Покупка #%d отклонена.\nЗаказ: %s", id, p.OrderID)
}

// NotifyAdminsNewPurchase шлет всем админам уведомление о новой заявке.
// Вызывается сервисом покупок после создания записи
func (b *AdminBot) NotifyAdminsNewPurchase(p domain.Purchase) {
	asset := string(p.CryptoSymbol)
	if p.Network != "" {
		asset += " (" + p.Network + ")"
	}

	text := fmt.Sprintf(`<b>🛒 Новая покупка</b>

#%d | %s
Пользователь: %d
Перевод: %s %s
Токены: %s + %s бонус = %s

/approve %d — одобрить
/reject %d &lt;причина&gt; — отклонить`,
		p.ID, p.OrderID, p.UserID,
		p.CryptoAmount.String(), asset,
		p.TokenAmount.String(), p.BonusAmount.String(), p.TotalAmount.String(),
		p.ID, p.ID)

	for _, adminID := range b.adminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ParseMode = "HTML"
		if _, err := b.bot.Send(msg); err != nil {
			b.log.Error("error notifying admin", "admin_id", adminID, "error", err)
		}
	}
}
