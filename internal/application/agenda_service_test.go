package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/gotree-agenda/internal/application"
	"github.com/example/gotree-agenda/internal/persistence"
	"github.com/example/gotree-agenda/internal/schedule"
	"github.com/example/gotree-agenda/internal/testfixtures"
)

func newAgendaService(store *testfixtures.Store) *application.AgendaService {
	ids := testfixtures.NewIDGenerator("generated")
	clock := testfixtures.NewClock(time.Time{})
	return application.NewAgendaService(store, store, store, store, ids.NextFunc(), clock.NowFunc())
}

func seedTechnician(store *testfixtures.Store, opts ...testfixtures.UserOption) testfixtures.UserFixture {
	user := testfixtures.NewUserFixture(opts...)
	store.SeedUser(user.Persistence())
	return user
}

func TestAgendaServiceCheckAvailability(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)

	t.Run("free slot yields no conflict", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		svc := newAgendaService(store)

		conflict, err := svc.CheckAvailability(context.Background(), user.ID, day, schedule.ShiftMorning)
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if conflict != nil {
			t.Fatalf("expected no conflict, got %q", conflict.Message)
		}
	})

	t.Run("two commitments on the day block any shift", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(user.ID, user.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(user.ID, user.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftAfternoon),
		).Persistence())
		svc := newAgendaService(store)

		conflict, err := svc.CheckAvailability(context.Background(), user.ID, day, schedule.ShiftMorning)
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if conflict == nil || !strings.Contains(conflict.Message, "manhã e tarde") {
			t.Fatalf("expected full day message, got %+v", conflict)
		}
	})

	t.Run("occupied shift is reported with the shift name", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(user.ID, user.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftAfternoon),
		).Persistence())
		svc := newAgendaService(store)

		conflict, err := svc.CheckAvailability(context.Background(), user.ID, day, schedule.ShiftAfternoon)
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if conflict == nil || !strings.Contains(conflict.Message, "(TARDE)") {
			t.Fatalf("expected shift message, got %+v", conflict)
		}
	})

	t.Run("historical entries still count towards capacity", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(user.ID, user.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventStatus(schedule.StatusCancelled),
		).Persistence())
		svc := newAgendaService(store)

		conflict, err := svc.CheckAvailability(context.Background(), user.ID, day, schedule.ShiftMorning)
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if conflict == nil {
			t.Fatal("expected cancelled entry to still occupy the shift count")
		}
	})
}

func TestAgendaServiceCreateEvent(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)

	t.Run("persists a confirmed event", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		svc := newAgendaService(store)

		entry, err := svc.CreateEvent(context.Background(), application.CreateEventParams{
			Principal: user.Principal(),
			Input: application.EventInput{
				Title:     "Reunião de alinhamento",
				EventDate: day,
				Shift:     schedule.ShiftMorning,
				EventType: schedule.EventMeeting,
			},
		})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if entry.Status != schedule.StatusConfirmed {
			t.Fatalf("expected confirmed status, got %s", entry.Status)
		}
		if entry.Kind != schedule.KindPersisted || entry.ReferenceID == "" {
			t.Fatalf("unexpected entry: %+v", entry)
		}
		if entry.ResponsibleName != user.Name {
			t.Fatalf("expected owner name %q, got %q", user.Name, entry.ResponsibleName)
		}
	})

	t.Run("rejects a busy shift with a conflict", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(user.ID, user.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		svc := newAgendaService(store)

		_, err := svc.CreateEvent(context.Background(), application.CreateEventParams{
			Principal: user.Principal(),
			Input: application.EventInput{
				Title:     "Integração",
				EventDate: day,
				Shift:     schedule.ShiftMorning,
				EventType: schedule.EventIntegration,
			},
		})
		var cErr *application.ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		svc := newAgendaService(store)

		_, err := svc.CreateEvent(context.Background(), application.CreateEventParams{
			Principal: user.Principal(),
			Input:     application.EventInput{},
		})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "event_date", "shift", "event_type"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("missing field error for %s: %+v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("maps a transactional slot race to a conflict", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		user := seedTechnician(store)
		svc := application.NewAgendaService(
			&racingEventRepository{Store: store, owner: user.ID, day: day},
			store, store, store,
			testfixtures.NewIDGenerator("race").NextFunc(),
			testfixtures.NewClock(time.Time{}).NowFunc(),
		)

		_, err := svc.CreateEvent(context.Background(), application.CreateEventParams{
			Principal: user.Principal(),
			Input: application.EventInput{
				Title:     "Reunião",
				EventDate: day,
				Shift:     schedule.ShiftMorning,
				EventType: schedule.EventMeeting,
			},
		})
		var cErr *application.ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError from slot race, got %v", err)
		}
	})
}

// racingEventRepository simulates a concurrent booking that lands between
// the service pre-check and the guarded insert.
type racingEventRepository struct {
	*testfixtures.Store
	owner string
	day   time.Time
	raced bool
}

func (r *racingEventRepository) CreateEventIfAvailable(ctx context.Context, event persistence.AgendaEvent) error {
	if !r.raced {
		r.raced = true
		return persistence.ErrSlotTaken
	}
	return r.Store.CreateEventIfAvailable(ctx, event)
}

func TestAgendaServiceUpdateAndDelete(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)

	t.Run("rejects updates from non owners", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		owner := seedTechnician(store)
		intruder := seedTechnician(store)
		event := testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(owner.ID, owner.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		)
		store.SeedEvent(event.Persistence())
		svc := newAgendaService(store)

		_, err := svc.UpdateEvent(context.Background(), application.UpdateEventParams{
			Principal: intruder.Principal(),
			EventID:   event.ID,
			Input: application.EventInput{
				Title:     "Alterado",
				EventDate: day,
				Shift:     schedule.ShiftMorning,
				EventType: schedule.EventMeeting,
			},
		})
		if !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("updates the editable fields", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		owner := seedTechnician(store)
		event := testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(owner.ID, owner.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		)
		store.SeedEvent(event.Persistence())
		svc := newAgendaService(store)

		moved := day.AddDate(0, 0, 3)
		entry, err := svc.UpdateEvent(context.Background(), application.UpdateEventParams{
			Principal: owner.Principal(),
			EventID:   event.ID,
			Input: application.EventInput{
				Title:       "Título novo",
				Description: "pauta revisada",
				EventDate:   moved,
				Shift:       schedule.ShiftMorning,
				EventType:   schedule.EventMeeting,
			},
		})
		if err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}
		if entry.Title != "Título novo" || !schedule.SameDay(entry.Date, moved) {
			t.Fatalf("update not applied: %+v", entry)
		}
	})

	t.Run("deletes only for the owner", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		owner := seedTechnician(store)
		intruder := seedTechnician(store)
		event := testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(owner.ID, owner.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		)
		store.SeedEvent(event.Persistence())
		svc := newAgendaService(store)

		if err := svc.DeleteEvent(context.Background(), intruder.Principal(), event.ID); !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := svc.DeleteEvent(context.Background(), owner.Principal(), event.ID); err != nil {
			t.Fatalf("DeleteEvent failed: %v", err)
		}
		if err := svc.DeleteEvent(context.Background(), owner.Principal(), event.ID); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestAgendaServiceRescheduleVisit(t *testing.T) {
	t.Parallel()

	oldDate := time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC)
	newDate := time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC)

	t.Run("records the trail and moves the projection", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		company := testfixtures.NewCompanyFixture(testfixtures.WithCompanyName("Empresa Alfa"))
		store.SeedCompany(company.Persistence())
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitCompany(company.ID, company.Name),
			testfixtures.WithVisitTechnician(technician.ID, technician.Name),
			testfixtures.WithVisitProjection(oldDate, schedule.ShiftMorning),
		)
		store.SeedVisit(visit.Persistence())
		svc := newAgendaService(store)

		err := svc.RescheduleVisit(context.Background(), application.RescheduleParams{
			Principal: technician.Principal(),
			VisitID:   visit.ID,
			NewDate:   newDate,
			Reason:    "cliente solicitou",
		})
		if err != nil {
			t.Fatalf("RescheduleVisit failed: %v", err)
		}

		trail, err := store.FindBySourceVisit(context.Background(), visit.ID)
		if err != nil {
			t.Fatalf("trail event not recorded: %v", err)
		}
		if trail.Status != string(schedule.StatusRescheduled) {
			t.Fatalf("expected rescheduled trail, got %s", trail.Status)
		}
		if !schedule.SameDay(trail.EventDate, oldDate) {
			t.Fatalf("trail must stay at the old date, got %v", trail.EventDate)
		}
		if trail.RescheduledToDate == nil || !schedule.SameDay(*trail.RescheduledToDate, newDate) {
			t.Fatalf("trail must point at the new date, got %v", trail.RescheduledToDate)
		}
		if trail.Title != "Visita: Empresa Alfa" {
			t.Fatalf("unexpected trail title: %q", trail.Title)
		}
		if trail.Description == nil || *trail.Description != "cliente solicitou" {
			t.Fatalf("reason not recorded: %v", trail.Description)
		}

		updated, err := store.GetVisit(context.Background(), visit.ID)
		if err != nil {
			t.Fatalf("GetVisit failed: %v", err)
		}
		if updated.NextVisitDate == nil || !schedule.SameDay(*updated.NextVisitDate, newDate) {
			t.Fatalf("projection not moved: %v", updated.NextVisitDate)
		}
	})

	t.Run("rejects visits without a projection", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitTechnician(technician.ID, technician.Name),
			testfixtures.WithoutVisitProjection(),
		)
		store.SeedVisit(visit.Persistence())
		svc := newAgendaService(store)

		err := svc.RescheduleVisit(context.Background(), application.RescheduleParams{
			Principal: technician.Principal(),
			VisitID:   visit.ID,
			NewDate:   newDate,
		})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown visit maps to not found", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		svc := newAgendaService(store)

		err := svc.RescheduleVisit(context.Background(), application.RescheduleParams{
			Principal: technician.Principal(),
			VisitID:   "missing",
			NewDate:   newDate,
		})
		if !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAgendaServiceValidateReportSubmission(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*testfixtures.Store, *application.AgendaService, testfixtures.UserFixture, testfixtures.CompanyFixture) {
		t.Helper()
		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		company := testfixtures.NewCompanyFixture(testfixtures.WithCompanyName("Empresa Alfa"))
		store.SeedCompany(company.Persistence())
		return store, newAgendaService(store), technician, company
	}

	t.Run("blocks a commitment for another company", func(t *testing.T) {
		t.Parallel()

		store, svc, technician, company := setup(t)
		other := testfixtures.NewCompanyFixture(testfixtures.WithCompanyName("Empresa Beta"))
		store.SeedCompany(other.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventCompany(other.ID, other.Name),
		).Persistence())

		err := svc.ValidateReportSubmission(context.Background(), "visit-x", technician.ID, day, schedule.ShiftMorning, company.ID)
		var cErr *application.ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !strings.Contains(cErr.Message, "BLOQUEIO DE AGENDA") || !strings.Contains(cErr.Message, "Empresa Beta") {
			t.Fatalf("unexpected message: %q", cErr.Message)
		}
	})

	t.Run("allows a commitment for the same company", func(t *testing.T) {
		t.Parallel()

		store, svc, technician, company := setup(t)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventCompany(company.ID, company.Name),
		).Persistence())

		if err := svc.ValidateReportSubmission(context.Background(), "visit-x", technician.ID, day, schedule.ShiftMorning, company.ID); err != nil {
			t.Fatalf("same company commitment must not block: %v", err)
		}
	})

	t.Run("skips the event of the visit being finalized", func(t *testing.T) {
		t.Parallel()

		store, svc, technician, company := setup(t)
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitCompany(company.ID, company.Name),
			testfixtures.WithVisitTechnician(technician.ID, technician.Name),
		)
		store.SeedVisit(visit.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventVisit(visit.ID),
		).Persistence())

		if err := svc.ValidateReportSubmission(context.Background(), visit.ID, technician.ID, day, schedule.ShiftMorning, ""); err != nil {
			t.Fatalf("the visit's own event must not block: %v", err)
		}
	})

	t.Run("skips cancelled and rescheduled entries", func(t *testing.T) {
		t.Parallel()

		store, svc, technician, company := setup(t)
		other := testfixtures.NewCompanyFixture()
		store.SeedCompany(other.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventCompany(other.ID, other.Name),
			testfixtures.WithEventStatus(schedule.StatusCancelled),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventCompany(other.ID, other.Name),
			testfixtures.WithEventStatus(schedule.StatusRescheduled),
			testfixtures.WithEventRescheduled(day.AddDate(0, 0, 7)),
		).Persistence())

		if err := svc.ValidateReportSubmission(context.Background(), "visit-x", technician.ID, day, schedule.ShiftMorning, company.ID); err != nil {
			t.Fatalf("historical entries must not block: %v", err)
		}
	})
}

func TestAgendaServiceCheckGlobalConflicts(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

	t.Run("names other technicians once each", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		me := seedTechnician(store)
		colleague := seedTechnician(store, testfixtures.WithUserName("Bruna"))
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(colleague.ID, colleague.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitTechnician(colleague.ID, colleague.Name),
			testfixtures.WithVisitProjection(day, schedule.ShiftMorning),
		)
		store.SeedVisit(visit.Persistence())
		svc := newAgendaService(store)

		warning, err := svc.CheckGlobalConflicts(context.Background(), day, schedule.ShiftMorning, me.Principal())
		if err != nil {
			t.Fatalf("CheckGlobalConflicts failed: %v", err)
		}
		if !strings.HasPrefix(warning, "Atenção:") || strings.Count(warning, "Bruna") != 1 {
			t.Fatalf("unexpected warning: %q", warning)
		}
	})

	t.Run("own commitments and cancellations are ignored", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		me := seedTechnician(store)
		colleague := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(me.ID, me.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(colleague.ID, colleague.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventStatus(schedule.StatusCancelled),
		).Persistence())
		svc := newAgendaService(store)

		warning, err := svc.CheckGlobalConflicts(context.Background(), day, schedule.ShiftMorning, me.Principal())
		if err != nil {
			t.Fatalf("CheckGlobalConflicts failed: %v", err)
		}
		if warning != "" {
			t.Fatalf("expected no warning, got %q", warning)
		}
	})
}

func TestAgendaServiceListings(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)

	t.Run("user agenda merges events and projections", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		company := testfixtures.NewCompanyFixture()
		store.SeedCompany(company.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitCompany(company.ID, company.Name),
			testfixtures.WithVisitTechnician(technician.ID, technician.Name),
			testfixtures.WithVisitProjection(day.AddDate(0, 0, 3), schedule.ShiftAfternoon),
		)
		store.SeedVisit(visit.Persistence())
		svc := newAgendaService(store)

		entries, err := svc.ListEventsForUser(context.Background(), technician.Principal())
		if err != nil {
			t.Fatalf("ListEventsForUser failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Kind != schedule.KindPersisted || entries[1].Kind != schedule.KindProjected {
			t.Fatalf("unexpected entry kinds: %+v", entries)
		}
	})

	t.Run("admin listing requires the admin flag", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		svc := newAgendaService(store)

		if _, err := svc.ListEventsForAdmin(context.Background(), technician.Principal(), ""); !errors.Is(err, application.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("admin listing filters by technician", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		admin := seedTechnician(store, testfixtures.WithUserAdmin(true))
		first := seedTechnician(store)
		second := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(first.ID, first.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(second.ID, second.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftAfternoon),
		).Persistence())
		svc := newAgendaService(store)

		entries, err := svc.ListEventsForAdmin(context.Background(), admin.Principal(), first.ID)
		if err != nil {
			t.Fatalf("ListEventsForAdmin failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ResponsibleName != first.Name {
			t.Fatalf("expected only the filtered technician, got %+v", entries)
		}

		all, err := svc.ListEventsForAdmin(context.Background(), admin.Principal(), "")
		if err != nil {
			t.Fatalf("ListEventsForAdmin failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected both events, got %d", len(all))
		}
	})

	t.Run("global listing validates the period", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		svc := newAgendaService(store)

		_, err := svc.GlobalEvents(context.Background(), day, day.AddDate(0, 0, -1))
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("global listing restricts to the period", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day.AddDate(0, 2, 0), schedule.ShiftMorning),
		).Persistence())
		svc := newAgendaService(store)

		entries, err := svc.GlobalEvents(context.Background(), day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("GlobalEvents failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry inside the period, got %d", len(entries))
		}
	})

	t.Run("company lookup matches direct and visit links", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		company := testfixtures.NewCompanyFixture()
		store.SeedCompany(company.Persistence())
		visit := testfixtures.NewVisitFixture(
			testfixtures.WithVisitCompany(company.ID, company.Name),
			testfixtures.WithVisitTechnician(technician.ID, technician.Name),
		)
		store.SeedVisit(visit.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventVisit(visit.ID),
		).Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day.AddDate(0, 0, 1), schedule.ShiftMorning),
			testfixtures.WithEventCompany(company.ID, company.Name),
		).Persistence())
		svc := newAgendaService(store)

		entries, err := svc.FindEventsByCompanies(context.Background(), []string{company.ID})
		if err != nil {
			t.Fatalf("FindEventsByCompanies failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected both linked events, got %d", len(entries))
		}
		if entries[0].Date.Before(entries[1].Date) {
			t.Fatalf("expected newest first ordering: %+v", entries)
		}
	})

	t.Run("client email resolves the companies", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		technician := seedTechnician(store)
		company := testfixtures.NewCompanyFixture(testfixtures.WithCompanyClientEmail("cliente@alfa.com.br"))
		store.SeedCompany(company.Persistence())
		store.SeedEvent(testfixtures.NewEventFixture(
			testfixtures.WithEventOwner(technician.ID, technician.Name),
			testfixtures.WithEventSlot(day, schedule.ShiftMorning),
			testfixtures.WithEventCompany(company.ID, company.Name),
		).Persistence())
		svc := newAgendaService(store)

		entries, err := svc.FindEventsByClientEmail(context.Background(), "CLIENTE@alfa.com.br")
		if err != nil {
			t.Fatalf("FindEventsByClientEmail failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}

		none, err := svc.FindEventsByClientEmail(context.Background(), "outro@cliente.com")
		if err != nil {
			t.Fatalf("FindEventsByClientEmail failed: %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("expected no entries, got %d", len(none))
		}
	})
}

func TestAgendaServiceMonthAvailability(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewStore()
	technician := seedTechnician(store)
	company := testfixtures.NewCompanyFixture()
	store.SeedCompany(company.Persistence())

	realizedDay := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	visit := testfixtures.NewVisitFixture(
		testfixtures.WithVisitCompany(company.ID, company.Name),
		testfixtures.WithVisitTechnician(technician.ID, technician.Name),
		testfixtures.WithVisitRealized(realizedDay, time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)),
		testfixtures.WithVisitProjection(time.Date(2025, time.August, 18, 0, 0, 0, 0, time.UTC), schedule.ShiftAfternoon),
	)
	store.SeedVisit(visit.Persistence())
	store.SeedEvent(testfixtures.NewEventFixture(
		testfixtures.WithEventOwner(technician.ID, technician.Name),
		testfixtures.WithEventSlot(time.Date(2025, time.August, 18, 0, 0, 0, 0, time.UTC), schedule.ShiftMorning),
	).Persistence())
	svc := newAgendaService(store)

	days, err := svc.MonthAvailability(context.Background(), technician.Principal(), 2025, time.August)
	if err != nil {
		t.Fatalf("MonthAvailability failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 busy days, got %d", len(days))
	}
	if !days[0].MorningBusy || days[0].AfternoonBusy {
		t.Fatalf("realized morning visit misreported: %+v", days[0])
	}
	if !days[1].FullDayBusy {
		t.Fatalf("expected full day from projection plus event: %+v", days[1])
	}
}

func TestAgendaServiceGetReportData(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)
	store := testfixtures.NewStore()
	technician := seedTechnician(store)
	store.SeedEvent(testfixtures.NewEventFixture(
		testfixtures.WithEventOwner(technician.ID, technician.Name),
		testfixtures.WithEventSlot(day, schedule.ShiftMorning),
		testfixtures.WithEventStatus(""),
	).Persistence())
	svc := newAgendaService(store)

	entries, err := svc.GetReportData(context.Background(), day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetReportData failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != schedule.StatusToConfirm {
		t.Fatalf("expected default status, got %s", entries[0].Status)
	}
}
