package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// draftCleanupSchedule ежечасная очистка заброшенных черновиков
const draftCleanupSchedule = "0 0 * * * *"

// draftTTL время жизни неизменявшегося черновика
const draftTTL = 24 * time.Hour

// SchedulerService периодические задачи: ежедневная сводка и очистка черновиков
type SchedulerService struct {
	cron     *cron.Cron
	finance  *FinanceService
	export   *ExportService
	editor   *TemplateEditorService
	executor *ExecutorService
	notifier Notifier
	logger   *zap.Logger
}

// NewSchedulerService создает планировщик. notifier может быть nil,
// тогда сводка не отправляется.
func NewSchedulerService(finance *FinanceService, export *ExportService, editor *TemplateEditorService, executor *ExecutorService, notifier Notifier, logger *zap.Logger) *SchedulerService {
	return &SchedulerService{
		cron:     cron.New(cron.WithSeconds()),
		finance:  finance,
		export:   export,
		editor:   editor,
		executor: executor,
		notifier: notifier,
		logger:   loggerOrNop(logger),
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *SchedulerService) Start(digestSchedule string) error {
	if _, err := s.cron.AddFunc(draftCleanupSchedule, s.cleanupDrafts); err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	if s.notifier != nil && digestSchedule != "" {
		if _, err := s.cron.AddFunc(digestSchedule, func() {
			if err := s.SendDigest(context.Background()); err != nil {
				s.logger.Error("Не удалось отправить сводку", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("failed to add digest job: %w", err)
		}
		s.logger.Info("Ежедневная сводка включена", zap.String("schedule", digestSchedule))
	}

	s.cron.Start()
	s.logger.Info("Планировщик запущен", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop останавливает планировщик и ждет завершения задач
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Планировщик остановлен")
}

func (s *SchedulerService) cleanupDrafts() {
	drafts := 0
	if s.editor != nil {
		drafts = s.editor.Expire(draftTTL)
	}
	executions := 0
	if s.executor != nil {
		executions = s.executor.Expire(draftTTL)
	}
	if drafts+executions > 0 {
		s.logger.Info("Удалены заброшенные черновики",
			zap.Int("drafts", drafts),
			zap.Int("executions", executions))
	}
}

// SendDigest отправляет сводку выручки по компаниям и Excel файл
func (s *SchedulerService) SendDigest(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}

	overview, err := s.finance.Overview(ctx)
	if err != nil {
		return err
	}
	if err := s.notifier.SendMessage(ctx, DigestText(overview)); err != nil {
		return err
	}

	if s.export != nil && overview.Count > 0 {
		doc, err := s.export.Export(ctx, ExportExcel, "")
		if err != nil {
			return err
		}
		if err := s.notifier.SendDocument(ctx, doc.FileName, doc.Data); err != nil {
			return err
		}
	}

	s.logger.Info("Сводка отправлена", zap.Int("companies", len(overview.Reports)))
	return nil
}

// DigestText текст сводки в HTML разметке Telegram
func DigestText(overview *FinanceOverview) string {
	var b strings.Builder
	b.WriteString("<b>CheckMaster • Faturamento</b>\n")
	fmt.Fprintf(&b, "Vistorias: %d\nTotal: <b>%s</b>\n", overview.Count, FormatBRL(overview.GrandTotal))
	if len(overview.Reports) > 0 {
		b.WriteString("\n")
	}
	for _, r := range overview.Reports {
		fmt.Fprintf(&b, "• %s: %s (%d)\n", html.EscapeString(r.Name), FormatBRL(r.Total), r.Count)
	}
	return b.String()
}
