package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/credential"
)

type mockRepo struct {
	mu       sync.Mutex
	patients map[string]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[string]*Patient)}
}

// emailTakenLocked mirrors the partial unique index on patient email.
func (m *mockRepo) emailTakenLocked(email *string, exceptID string) bool {
	if email == nil || *email == "" {
		return false
	}
	for id, p := range m.patients {
		if id != exceptID && p.Email != nil && *p.Email == *email {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.PatientID]; ok {
		return apperr.Conflict("patient %s already exists", p.PatientID)
	}
	if m.emailTakenLocked(p.Email, p.PatientID) {
		return apperr.Conflict("email %s is already in use", *p.Email)
	}
	cp := *p
	m.patients[p.PatientID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) ListByIDs(_ context.Context, ids []string) ([]*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Patient
	for _, id := range ids {
		if p, ok := m.patients[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.patients))
	for id := range m.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	total := len(ids)
	var out []*Patient
	for i := offset; i < total && len(out) < limit; i++ {
		cp := *m.patients[ids[i]]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.PatientID]; !ok {
		return apperr.NotFound("patient not found")
	}
	if m.emailTakenLocked(p.Email, p.PatientID) {
		return apperr.Conflict("email %s is already in use", *p.Email)
	}
	cp := *p
	m.patients[p.PatientID] = &cp
	return nil
}

func (m *mockRepo) MaxID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := ""
	for id := range m.patients {
		if id > max {
			max = id
		}
	}
	return max, nil
}

type mockAppointments struct {
	byPatient map[string][]*appointment.Appointment
}

func (m *mockAppointments) ListByPatient(_ context.Context, id string) ([]*appointment.Appointment, error) {
	return m.byPatient[id], nil
}

func newTestService(repo *mockRepo) *Service {
	appts := &mockAppointments{byPatient: map[string][]*appointment.Appointment{}}
	history := func(id string) []HistoryEntry {
		if id == "P001" {
			return []HistoryEntry{{Medicine: "Paracetamol"}}
		}
		return nil
	}
	return NewService(repo, appts, history, credential.DefaultCost)
}

func TestSignupAllocatesSequentialIDs(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Signup(ctx, SignupInput{Name: "John Doe", Password: "pw1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if first.PatientID != "P001" {
		t.Errorf("first id = %q, want P001", first.PatientID)
	}

	second, err := svc.Signup(ctx, SignupInput{Name: "Jane Smith", Password: "pw2"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if second.PatientID != "P002" {
		t.Errorf("second id = %q, want P002", second.PatientID)
	}
}

func TestSignupHashesPassword(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	p, err := svc.Signup(context.Background(), SignupInput{Name: "John", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	stored := repo.patients[p.PatientID]
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("password stored without hashing: %q", stored.PasswordHash)
	}
	if stored.PasswordHash == "s3cret" {
		t.Error("plaintext password must not be stored")
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Signup(context.Background(), SignupInput{Name: "John"}); !apperr.IsValidation(err) {
		t.Errorf("missing password: expected validation error, got %v", err)
	}
	if _, err := svc.Signup(context.Background(), SignupInput{Password: "pw"}); !apperr.IsValidation(err) {
		t.Errorf("missing name: expected validation error, got %v", err)
	}
}

func TestConcurrentSignupsUniqueIDs(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	const workers = 6
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Signup(context.Background(), SignupInput{Name: "P", Password: "pw"}); err != nil {
				t.Errorf("Signup: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(repo.patients) != workers {
		t.Errorf("expected %d distinct patients, got %d", workers, len(repo.patients))
	}
}

func TestLoginBcryptAndPlaintext(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, SignupInput{Name: "John", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Login(ctx, signed.PatientID, "s3cret"); err != nil {
		t.Errorf("bcrypt login: %v", err)
	}
	if _, err := svc.Login(ctx, signed.PatientID, "wrong"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("wrong password: expected ErrInvalidLogin, got %v", err)
	}

	// legacy account with plaintext secret
	repo.patients["P099"] = &Patient{PatientID: "P099", Name: "Legacy", PasswordHash: "password1"}
	if _, err := svc.Login(ctx, "P099", "password1"); err != nil {
		t.Errorf("plaintext login: %v", err)
	}
	if _, err := svc.Login(ctx, "P099", "password"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("plaintext mismatch: expected ErrInvalidLogin, got %v", err)
	}
}

func TestLoginUnknownPatient(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Login(context.Background(), "P404", "pw"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("unknown id: expected ErrInvalidLogin, got %v", err)
	}
}

func TestLoginValidation(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Login(context.Background(), "", "pw"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "P001", ""); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Signup(ctx, SignupInput{Name: "John", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}

	name := "John Q. Doe"
	phone := "+1 555 111-2222"
	got, err := svc.UpdateProfile(ctx, p.PatientID, UpdateInput{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != name || got.Phone == nil || *got.Phone != phone {
		t.Errorf("profile not updated: %+v", got)
	}

	empty := ""
	if _, err := svc.UpdateProfile(ctx, p.PatientID, UpdateInput{Name: &empty}); !apperr.IsValidation(err) {
		t.Errorf("empty name: expected validation error, got %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, "P404", UpdateInput{}); !apperr.IsNotFound(err) {
		t.Errorf("unknown patient: expected not found, got %v", err)
	}
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	taken := "jane@example.com"
	if _, err := svc.Signup(ctx, SignupInput{Name: "Jane", Password: "pw", Email: &taken}); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Signup(ctx, SignupInput{Name: "John", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateProfile(ctx, p.PatientID, UpdateInput{Email: &taken}); !apperr.IsConflict(err) {
		t.Errorf("duplicate email: expected conflict, got %v", err)
	}

	// keeping one's own email is not a conflict
	own := "john@example.com"
	if _, err := svc.UpdateProfile(ctx, p.PatientID, UpdateInput{Email: &own}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, p.PatientID, UpdateInput{Email: &own}); err != nil {
		t.Errorf("re-submitting own email: %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestService(newMockRepo())
	ctx := context.Background()

	email := "john@example.com"
	if _, err := svc.Signup(ctx, SignupInput{Name: "John", Password: "pw", Email: &email}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Name: "Johnny", Password: "pw", Email: &email}); !apperr.IsConflict(err) {
		t.Errorf("duplicate email: expected conflict, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	repo := newMockRepo()
	appts := &mockAppointments{byPatient: map[string][]*appointment.Appointment{
		"P001": {{AppointmentID: "A001", PatientID: "P001", Status: appointment.StatusUpcoming}},
	}}
	history := func(id string) []HistoryEntry {
		if id == "P001" {
			return []HistoryEntry{{Medicine: "Paracetamol"}}
		}
		return nil
	}
	svc := NewService(repo, appts, history, credential.DefaultCost)
	ctx := context.Background()

	repo.patients["P001"] = &Patient{PatientID: "P001", Name: "John Doe"}
	repo.patients["P002"] = &Patient{PatientID: "P002", Name: "Jane Smith"}

	d, err := svc.Dashboard(ctx, "P001")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Patient.PatientID != "P001" || len(d.Appointments) != 1 || len(d.History) != 1 {
		t.Errorf("unexpected dashboard: %+v", d)
	}

	// patient without fixtures still gets empty, non-nil slices
	d, err = svc.Dashboard(ctx, "P002")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Appointments == nil || d.History == nil {
		t.Error("dashboard slices must not be nil")
	}

	if _, err := svc.Dashboard(ctx, "P404"); !apperr.IsNotFound(err) {
		t.Errorf("unknown patient: expected not found, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Signup(ctx, SignupInput{Name: "P", Password: "pw"}); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := svc.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Errorf("total=%d len=%d, want 5 and 2", total, len(page))
	}
	if page[0].PatientID != "P003" {
		t.Errorf("unexpected page start: %q", page[0].PatientID)
	}
}
