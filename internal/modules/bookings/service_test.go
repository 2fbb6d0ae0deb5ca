package bookings

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devta181281/flexfit/internal/clock"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/shared/apperr"
	"github.com/devta181281/flexfit/internal/shared/bookingcode"
)

type fakeStore struct {
	mu       sync.Mutex
	byID     map[string]*Booking
	byCode   map[string]string // code -> id
	receipts map[string]bool   // receipt id -> consumed
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:     map[string]*Booking{},
		byCode:   map[string]string{},
		receipts: map[string]bool{},
	}
}

func (f *fakeStore) CountByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.byID {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeStore) Create(_ context.Context, b *Booking, receiptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if receiptID != "" {
		consumed, ok := f.receipts[receiptID]
		if !ok || consumed {
			return ErrReceiptUnavailable
		}
		f.receipts[receiptID] = true
	}
	if _, ok := f.byCode[b.BookingCode]; ok {
		return ErrDuplicateCode
	}
	cp := *b
	f.byID[b.ID] = &cp
	f.byCode[b.BookingCode] = b.ID
	return nil
}

func (f *fakeStore) FindByCode(_ context.Context, code string) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byCode[code]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return *f.byID[id], nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return *b, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.byID {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkUsed(_ context.Context, id string, usedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok || b.Status != StatusConfirmed {
		return false, nil
	}
	t := usedAt
	b.Status = StatusUsed
	b.UsedAt = &t
	b.UpdatedAt = usedAt
	return true, nil
}

func (f *fakeStore) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.byID {
		if b.Status == StatusConfirmed && b.BookingDate.Before(cutoff) {
			b.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) seed(b Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := b
	f.byID[b.ID] = &cp
	f.byCode[b.BookingCode] = b.ID
}

type fakeDirectory struct{ gyms map[string]gyms.Gym }

func (f *fakeDirectory) FindGym(_ context.Context, id string) (gyms.Gym, error) {
	g, ok := f.gyms[id]
	if !ok {
		return gyms.Gym{}, gyms.ErrGymNotFound
	}
	return g, nil
}

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2025, 3, 10+offset, 0, 0, 0, 0, time.UTC)
}

func testGym() gyms.Gym {
	return gyms.Gym{ID: "gym-1", OwnerID: "owner-1", Name: "Iron Temple", DayPassPrice: 299, Status: gyms.StatusApproved}
}

func newTestService(store *fakeStore) *Service {
	dir := &fakeDirectory{gyms: map[string]gyms.Gym{"gym-1": testGym()}}
	codes := bookingcode.NewGenerator("FLX-", 6, 5)
	return NewService(store, dir, codes, clock.NewFixed(testNow))
}

func confirmedBooking(id, code string, date time.Time) Booking {
	return Booking{
		ID: id, BookingCode: code, UserID: "user-1", GymID: "gym-1",
		BookingDate: date, Amount: 299, Status: StatusConfirmed,
		QRArtifact: code, CreatedAt: testNow, UpdatedAt: testNow,
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("paid path issues confirmed booking with code and artifact", func(t *testing.T) {
		store := newFakeStore()
		store.receipts["rcpt-1"] = false
		svc := newTestService(store)

		b, err := svc.Create(context.Background(), CreateInput{
			UserID: "user-1", GymID: "gym-1", BookingDate: day(1), ReceiptID: "rcpt-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != StatusConfirmed {
			t.Fatalf("expected CONFIRMED, got %s", b.Status)
		}
		if !strings.HasPrefix(b.BookingCode, "FLX-") || len(b.BookingCode) != len("FLX-")+6 {
			t.Fatalf("unexpected code %q", b.BookingCode)
		}
		if b.Amount != 299 {
			t.Fatalf("expected amount copied from gym price, got %v", b.Amount)
		}
		if !strings.HasPrefix(b.QRArtifact, "data:image/png;base64,") {
			t.Fatalf("expected QR data URI artifact, got %q", b.QRArtifact[:20])
		}
		if b.UsedAt != nil {
			t.Fatal("used_at must be nil on creation")
		}
		if !store.receipts["rcpt-1"] {
			t.Fatal("expected receipt consumed")
		}
	})

	t.Run("a receipt mints at most one booking", func(t *testing.T) {
		store := newFakeStore()
		store.receipts["rcpt-1"] = false
		svc := newTestService(store)

		in := CreateInput{UserID: "user-1", GymID: "gym-1", BookingDate: day(1), ReceiptID: "rcpt-1"}
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := svc.Create(context.Background(), in)
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.Conflict {
			t.Fatalf("expected conflict on replayed receipt, got %v", err)
		}
	})

	t.Run("missing receipt is rejected unless the trusted path is enabled", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store)

		in := CreateInput{UserID: "user-1", GymID: "gym-1", BookingDate: day(1)}
		_, err := svc.Create(context.Background(), in)
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.BusinessRule {
			t.Fatalf("expected business rule error, got %v", err)
		}

		svc.AllowUnpaid(true)
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("trusted path should succeed, got %v", err)
		}
	})

	t.Run("unknown gym is not found", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		svc.AllowUnpaid(true)

		_, err := svc.Create(context.Background(), CreateInput{
			UserID: "user-1", GymID: "nope", BookingDate: day(1),
		})
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.NotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("unapproved gym is rejected", func(t *testing.T) {
		store := newFakeStore()
		g := testGym()
		g.Status = gyms.StatusPending
		dir := &fakeDirectory{gyms: map[string]gyms.Gym{"gym-1": g}}
		svc := NewService(store, dir, bookingcode.NewGenerator("FLX-", 6, 5), clock.NewFixed(testNow))
		svc.AllowUnpaid(true)

		_, err := svc.Create(context.Background(), CreateInput{
			UserID: "user-1", GymID: "gym-1", BookingDate: day(1),
		})
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.BusinessRule {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("codes stay unique under concurrent creation", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store)
		svc.AllowUnpaid(true)

		const n = 40
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Create(context.Background(), CreateInput{
					UserID: "user-1", GymID: "gym-1", BookingDate: day(1),
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent create failed: %v", err)
			}
		}
		if len(store.byCode) != n {
			t.Fatalf("expected %d distinct codes, got %d", n, len(store.byCode))
		}
	})
}

func TestAdmission_CanAdmit(t *testing.T) {
	t.Parallel()

	seedN := func(n int) *fakeStore {
		store := newFakeStore()
		for i := 0; i < n; i++ {
			store.seed(confirmedBooking(
				"b-"+string(rune('a'+i%26))+string(rune('a'+i/26)),
				"FLX-SEED"+string(rune('A'+i%26))+string(rune('A'+i/26)),
				day(-i),
			))
		}
		return store
	}

	t.Run("below ceiling admits", func(t *testing.T) {
		adm := NewAdmission(seedN(15), 16)
		ok, err := adm.CanAdmit(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("15 bookings must admit a 16th")
		}
	})

	t.Run("at ceiling denies", func(t *testing.T) {
		adm := NewAdmission(seedN(16), 16)
		ok, err := adm.CanAdmit(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Fatal("16 bookings must deny a 17th")
		}
	})

	t.Run("terminal statuses still count", func(t *testing.T) {
		store := seedN(16)
		store.mu.Lock()
		for _, b := range store.byID {
			b.Status = StatusExpired
		}
		store.mu.Unlock()

		adm := NewAdmission(store, 16)
		ok, _ := adm.CanAdmit(context.Background(), "user-1")
		if ok {
			t.Fatal("the ceiling is historical, not active-only")
		}
	})
}

func TestService_Redeem(t *testing.T) {
	t.Parallel()

	today := day(0)

	t.Run("happy path check-in", func(t *testing.T) {
		store := newFakeStore()
		store.seed(confirmedBooking("b-1", "FLX-ABC123", today))
		svc := newTestService(store)

		res, err := svc.Redeem(context.Background(), RedeemInput{
			GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ABC123",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Valid {
			t.Fatalf("expected valid, got %q", res.Message)
		}
		if res.Message != "Check-in successful" {
			t.Fatalf("unexpected message %q", res.Message)
		}
		if res.Booking.Status != StatusUsed || res.Booking.UsedAt == nil {
			t.Fatal("expected booking transitioned to USED with used_at set")
		}
	})

	t.Run("input is case-normalized and trimmed", func(t *testing.T) {
		store := newFakeStore()
		store.seed(confirmedBooking("b-1", "FLX-ABC123", today))
		svc := newTestService(store)

		res, err := svc.Redeem(context.Background(), RedeemInput{
			GymID: "gym-1", OwnerID: "owner-1", Code: "  flx-abc123 ",
		})
		if err != nil || !res.Valid {
			t.Fatalf("expected valid for normalized input, got %v / %+v", err, res)
		}
	})

	t.Run("unknown gym is a hard not found", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Redeem(context.Background(), RedeemInput{GymID: "nope", OwnerID: "owner-1", Code: "FLX-ABC123"})
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.NotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("non-owner is forbidden, not not-found", func(t *testing.T) {
		store := newFakeStore()
		store.seed(confirmedBooking("b-1", "FLX-ABC123", today))
		svc := newTestService(store)

		_, err := svc.Redeem(context.Background(), RedeemInput{GymID: "gym-1", OwnerID: "intruder", Code: "FLX-ABC123"})
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.Forbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("unknown code is a soft failure without booking", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		res, err := svc.Redeem(context.Background(), RedeemInput{GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ZZZZZZ"})
		if err != nil {
			t.Fatalf("expected soft failure, got %v", err)
		}
		if res.Valid || res.Message != "Invalid booking code" || res.Booking != nil {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("wrong gym beats status and date checks", func(t *testing.T) {
		store := newFakeStore()
		b := confirmedBooking("b-1", "FLX-ABC123", day(-3))
		b.GymID = "gym-other"
		b.Status = StatusUsed
		store.seed(b)
		svc := newTestService(store)

		res, err := svc.Redeem(context.Background(), RedeemInput{GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ABC123"})
		if err != nil {
			t.Fatalf("expected soft failure, got %v", err)
		}
		if res.Valid || res.Message != "This booking is not for your gym" {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("terminal statuses report distinctly with booking attached", func(t *testing.T) {
		cases := []struct {
			status string
			want   string
		}{
			{StatusUsed, "This booking has already been used"},
			{StatusExpired, "This booking has expired"},
			{StatusCancelled, "This booking has been cancelled"},
		}
		for _, tc := range cases {
			store := newFakeStore()
			b := confirmedBooking("b-1", "FLX-ABC123", today)
			b.Status = tc.status
			store.seed(b)
			svc := newTestService(store)

			res, err := svc.Redeem(context.Background(), RedeemInput{GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ABC123"})
			if err != nil {
				t.Fatalf("%s: expected soft failure, got %v", tc.status, err)
			}
			if res.Valid || res.Message != tc.want || res.Booking == nil {
				t.Fatalf("%s: unexpected result %+v", tc.status, res)
			}
		}
	})

	t.Run("date gate rejects tomorrow's booking today", func(t *testing.T) {
		store := newFakeStore()
		store.seed(confirmedBooking("b-1", "FLX-ABC123", day(1)))
		svc := newTestService(store)

		res, err := svc.Redeem(context.Background(), RedeemInput{GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ABC123"})
		if err != nil {
			t.Fatalf("expected soft failure, got %v", err)
		}
		if res.Valid {
			t.Fatal("tomorrow's booking must not redeem today")
		}
		if res.Message != "This booking is for 11 Mar 2025, not today" {
			t.Fatalf("unexpected message %q", res.Message)
		}
		if res.Booking == nil {
			t.Fatal("expected booking attached")
		}
	})

	t.Run("concurrent redemption yields exactly one success", func(t *testing.T) {
		store := newFakeStore()
		store.seed(confirmedBooking("b-1", "FLX-ABC123", today))
		svc := newTestService(store)

		const n = 16
		results := make(chan RedemptionResult, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := svc.Redeem(context.Background(), RedeemInput{
					GymID: "gym-1", OwnerID: "owner-1", Code: "FLX-ABC123",
				})
				if err != nil {
					t.Errorf("redeem error: %v", err)
					return
				}
				results <- res
			}()
		}
		wg.Wait()
		close(results)

		var successes, alreadyUsed int
		for res := range results {
			if res.Valid {
				successes++
			} else if res.Message == "This booking has already been used" {
				alreadyUsed++
			}
		}
		if successes != 1 {
			t.Fatalf("expected exactly one success, got %d", successes)
		}
		if alreadyUsed != n-1 {
			t.Fatalf("expected %d already-used results, got %d", n-1, alreadyUsed)
		}
	})
}

func TestService_MarkExpired(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seed(confirmedBooking("b-old", "FLX-OLD111", day(-3)))
	store.seed(confirmedBooking("b-yday", "FLX-YDAY11", day(-1)))
	store.seed(confirmedBooking("b-today", "FLX-TODAY1", day(0)))
	used := confirmedBooking("b-used", "FLX-USED11", day(-5))
	used.Status = StatusUsed
	store.seed(used)
	svc := newTestService(store)

	n, err := svc.MarkExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 expirations, got %d", n)
	}

	check := func(id, want string) {
		b, _ := store.FindByID(context.Background(), id)
		if b.Status != want {
			t.Errorf("%s: status %s, want %s", id, b.Status, want)
		}
	}
	check("b-old", StatusExpired)
	check("b-yday", StatusExpired)
	check("b-today", StatusConfirmed)
	check("b-used", StatusUsed)

	// idempotent: a second sweep changes nothing
	n, err = svc.MarkExpired(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected idempotent sweep, got %d more expirations", n)
	}
}
