package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"calendario/internal/amqp"
	"calendario/internal/backend/memory"
	"calendario/internal/core"
)

func TestReminderProcessor_ProcessDueReminders(t *testing.T) {
	ctx := context.Background()

	mortgage := monthly("Mutuo", 650, core.NewDate(2025, 1, 5))
	light := monthly("Luce", 60, core.NewDate(2025, 2, 4))
	light.PaymentFrequency = core.Bimonthly
	gym := monthly("Palestra", 40, core.NewDate(2025, 1, 1))
	car := monthly("Auto", 1200, core.NewDate(2024, 12, 6))
	car.Type = core.Installment
	car.PaymentFrequency = core.Quarterly
	car.Installments = 4
	car.Important = true
	insurance := monthly("Assicurazione", 500, core.NewDate(2025, 3, 10))
	insurance.PaymentFrequency = core.Annually

	store := memory.New(mortgage, light, gym, car, insurance)
	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, pub, 3)

	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	sent, err := proc.ProcessDueReminders(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2 (%+v)", sent, pub.due)
	}

	got := map[string]string{}
	for _, m := range pub.due {
		got[m.Name] = m.DueDate
	}
	if got["Mutuo"] != "2025-03-05" || got["Auto"] != "2025-03-06" {
		t.Fatalf("unexpected reminders: %v", got)
	}
	for _, m := range pub.due {
		if m.Name != "Auto" {
			continue
		}
		if m.Amount != "300.00" || m.Number != 2 || m.Installments != 4 || !m.Important || m.Month != 3 {
			t.Fatalf("unexpected installment reminder: %+v", m)
		}
	}

	again, err := proc.ProcessDueReminders(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if again != 0 {
		t.Fatalf("second pass sent %d reminders, want 0", again)
	}
}

func TestReminderProcessor_WindowCrossesMonth(t *testing.T) {
	store := memory.New(
		monthly("Telefono", 20, core.NewDate(2025, 1, 2)),
		monthly("Fine mese", 10, core.NewDate(2025, 1, 31)),
	)
	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, pub, 5)

	sent, err := proc.ProcessDueReminders(context.Background(), time.Date(2025, 1, 30, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}

	want := map[string]string{"Telefono": "2025-02-02", "Fine mese": "2025-01-31"}
	for _, m := range pub.due {
		if want[m.Name] != m.DueDate {
			t.Errorf("%s due %s, want %s", m.Name, m.DueDate, want[m.Name])
		}
	}
}

func TestReminderProcessor_RetriesAfterPublishFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New(monthly("Mutuo", 650, core.NewDate(2025, 1, 5)))
	pub := &fakePublisher{fail: true}
	proc := NewReminderProcessor(store, pub, 7)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if sent, err := proc.ProcessDueReminders(ctx, now); err != nil || sent != 0 {
		t.Fatalf("failing publisher: sent=%d err=%v", sent, err)
	}

	pub.fail = false
	if sent, err := proc.ProcessDueReminders(ctx, now); err != nil || sent != 1 {
		t.Fatalf("after recovery: sent=%d err=%v", sent, err)
	}
}

func TestReminderProcessor_NotInitialized(t *testing.T) {
	proc := NewReminderProcessor(memory.New(), nil, 3)
	if _, err := proc.ProcessDueReminders(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error without publisher")
	}
}

type slowPublisher struct {
	fakePublisher
	delay time.Duration
}

func (p *slowPublisher) PublishPaymentDue(ctx context.Context, msg *amqp.PaymentDueMessage) error {
	time.Sleep(p.delay)
	return p.fakePublisher.PublishPaymentDue(ctx, msg)
}

func TestReminderProcessor_ConcurrentPassesPublishOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New(monthly("Mutuo", 650, core.NewDate(2025, 1, 5)))
	pub := &slowPublisher{delay: 20 * time.Millisecond}
	proc := NewReminderProcessor(store, pub, 3)
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	sent := make([]int, 4)
	for i := range sent {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := proc.ProcessDueReminders(ctx, now)
			if err != nil {
				t.Errorf("ProcessDueReminders: %v", err)
			}
			sent[i] = n
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range sent {
		total += n
	}
	if total != 1 || len(pub.due) != 1 {
		t.Fatalf("published %d reminders (sent counts %v), want 1", len(pub.due), sent)
	}
}

func TestReminderProcessor_LogsRemindOperation(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	store := memory.New(monthly("Mutuo", 650, core.NewDate(2025, 1, 5)))
	proc := NewReminderProcessor(store, &fakePublisher{}, 3)
	if _, err := proc.ProcessDueReminders(context.Background(), time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Payment reminder sent") || !strings.Contains(out, "operation=remind") {
		t.Fatalf("missing remind operation in log output: %s", out)
	}
}
