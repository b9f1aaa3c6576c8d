// Package testutil holds in-memory collaborators for use case and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appointment "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

// Store implements the appointment and availability repositories over maps.
// Like the holder index, it refuses two appointments holding one slot.
// WithinTx does not roll back; tests exercise validation-before-write paths.
type Store struct {
	mu sync.Mutex

	nextID       uint
	users        map[uint]models.User
	services     map[uint]models.Service
	slots        map[uint]models.AvailabilitySlot
	appointments map[uint]models.Appointment
}

var (
	_ appointment.Repository  = (*Store)(nil)
	_ availability.Repository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users:        map[uint]models.User{},
		services:     map[uint]models.Service{},
		slots:        map[uint]models.AvailabilitySlot{},
		appointments: map[uint]models.Appointment{},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) AddService(svc models.Service) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.id()
	}
	s.services[svc.ID] = svc
	return svc
}

// AddSlot inserts a slot without validation, e.g. one already in the past.
func (s *Store) AddSlot(slot models.AvailabilitySlot) models.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == 0 {
		slot.ID = s.id()
	}
	s.slots[slot.ID] = slot
	return slot
}

// AddAppointment inserts an appointment without the holder check, e.g. rows
// written before the holder index existed.
func (s *Store) AddAppointment(ap models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = s.id()
	}
	s.appointments[ap.ID] = ap
	return ap
}

func (s *Store) Slot(id uint) models.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[id]
}

func (s *Store) Appointment(id uint) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments[id]
}

func (s *Store) AppointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --------------------------------------------------
// Users & services
// --------------------------------------------------

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, httperr.NotFoundErr("user_not_found", "User not found.")
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, httperr.NotFoundErr("user_not_found", "User not found.")
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return httperr.Conflict("email_already_registered", "An account with this email already exists.")
		}
	}
	u.ID = s.id()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.id()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) SaveService(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[id]; !ok {
		return httperr.NotFoundErr("service_not_found", "Service not found.")
	}
	for _, ap := range s.appointments {
		if ap.ServiceID == id {
			return httperr.Conflict("service_in_use", "Service has appointments and cannot be deleted.")
		}
	}
	delete(s.services, id)
	return nil
}

func (s *Store) GetService(ctx context.Context, id uint) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, httperr.NotFoundErr("service_not_found", "Service not found.")
	}
	return &svc, nil
}

// --------------------------------------------------
// Slots
// --------------------------------------------------

func (s *Store) GetSlot(ctx context.Context, id uint) (*models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, httperr.NotFoundErr("slot_not_found", "Availability slot not found.")
	}
	slot.Service = s.services[slot.ServiceID]
	return &slot, nil
}

func (s *Store) CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot.ID = s.id()
	stored := *slot
	stored.Service = models.Service{}
	s.slots[slot.ID] = stored
	return nil
}

func (s *Store) UpdateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slot.ID]; !ok {
		return httperr.NotFoundErr("slot_not_found", "Availability slot not found.")
	}
	stored := *slot
	stored.Service = models.Service{}
	s.slots[slot.ID] = stored
	return nil
}

func (s *Store) DeleteSlot(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
	return nil
}

func (s *Store) FindOverlapping(ctx context.Context, adminID uint, start, end time.Time, excludeID uint) ([]models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, slot := range s.slots {
		if slot.AdminID != adminID || slot.ID == excludeID {
			continue
		}
		if availability.Overlaps(start, end, slot.StartTime, slot.EndTime) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *Store) TryBook(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok || slot.Booked {
		return false, nil
	}
	slot.Booked = true
	s.slots[id] = slot
	return true, nil
}

func (s *Store) Release(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return httperr.NotFoundErr("slot_not_found", "Availability slot not found.")
	}
	slot.Booked = false
	s.slots[id] = slot
	return nil
}

func (s *Store) ReleaseUnheld(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok || s.holderLocked(id, 0) != nil {
		return false, nil
	}
	slot.Booked = false
	s.slots[id] = slot
	return true, nil
}

// holderLocked returns the appointment other than exceptID holding the slot.
func (s *Store) holderLocked(slotID, exceptID uint) *models.Appointment {
	for id, ap := range s.appointments {
		if id != exceptID && ap.SlotID != nil && *ap.SlotID == slotID && appointment.HoldsSlot(&ap) {
			return &ap
		}
	}
	return nil
}

func (s *Store) CancelSlotHolder(ctx context.Context, slotID uint, now time.Time) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap := s.holderLocked(slotID, 0); ap != nil {
		if err := appointment.CanReleaseHeldSlot(appointment.Status(ap.Status)); err != nil {
			return 0, err
		}
		id := ap.ID
		ap.Status = string(appointment.StatusCancelled)
		ap.CancelledAt = &now
		s.appointments[id] = *ap
		return id, nil
	}
	return 0, nil
}

func (s *Store) ListAvailable(ctx context.Context, w availability.Window, now time.Time) ([]models.AvailabilitySlot, error) {
	return s.filterSlots(func(slot models.AvailabilitySlot) bool {
		if slot.Booked || !slot.StartTime.After(now) {
			return false
		}
		if w.ServiceID != 0 && slot.ServiceID != w.ServiceID {
			return false
		}
		return !slot.StartTime.Before(w.From) && !slot.StartTime.After(w.To)
	}), nil
}

func (s *Store) ListSlots(ctx context.Context) ([]models.AvailabilitySlot, error) {
	return s.filterSlots(func(models.AvailabilitySlot) bool { return true }), nil
}

func (s *Store) ListSlotsByService(ctx context.Context, serviceID uint) ([]models.AvailabilitySlot, error) {
	return s.filterSlots(func(slot models.AvailabilitySlot) bool { return slot.ServiceID == serviceID }), nil
}

func (s *Store) filterSlots(keep func(models.AvailabilitySlot) bool) []models.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, slot := range s.slots {
		if keep(slot) {
			slot.Service = s.services[slot.ServiceID]
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (s *Store) hydrate(ap models.Appointment) models.Appointment {
	ap.User = s.users[ap.UserID]
	ap.Service = s.services[ap.ServiceID]
	if ap.SlotID != nil {
		if slot, ok := s.slots[*ap.SlotID]; ok {
			slot.Service = s.services[slot.ServiceID]
			ap.Slot = &slot
		}
	}
	return ap
}

func (s *Store) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.appointments[id]
	if !ok {
		return nil, httperr.NotFoundErr("appointment_not_found", "Appointment not found.")
	}
	ap = s.hydrate(ap)
	return &ap, nil
}

func (s *Store) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.SlotID != nil && appointment.HoldsSlot(ap) && s.holderLocked(*ap.SlotID, 0) != nil {
		return appointment.ErrSlotHeld
	}
	ap.ID = s.id()
	ap.CreatedAt = time.Now()
	s.appointments[ap.ID] = strip(*ap)
	return nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[ap.ID]; !ok {
		return httperr.NotFoundErr("appointment_not_found", "Appointment not found.")
	}
	if ap.SlotID != nil && appointment.HoldsSlot(ap) && s.holderLocked(*ap.SlotID, ap.ID) != nil {
		return appointment.ErrSlotHeld
	}
	s.appointments[ap.ID] = strip(*ap)
	return nil
}

func (s *Store) ListAppointmentsByUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	return s.filterAppointments(func(ap models.Appointment) bool { return ap.UserID == userID }), nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return s.filterAppointments(func(models.Appointment) bool { return true }), nil
}

func (s *Store) ListAppointmentsOn(ctx context.Context, day time.Time, status appointment.Status) ([]models.Appointment, error) {
	return s.filterAppointments(func(ap models.Appointment) bool {
		return ap.Status == string(status) && ap.ScheduledAt.Equal(day)
	}), nil
}

func (s *Store) filterAppointments(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.appointments {
		if keep(ap) {
			out = append(out, s.hydrate(ap))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func strip(ap models.Appointment) models.Appointment {
	ap.User = models.User{}
	ap.Service = models.Service{}
	ap.Slot = nil
	return ap
}

// --------------------------------------------------
// Events
// --------------------------------------------------

// Events records published notifications.
type Events struct {
	mu     sync.Mutex
	events []notify.Event
}

func (e *Events) Publish(ev notify.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *Events) All() []notify.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]notify.Event, len(e.events))
	copy(out, e.events)
	return out
}

func (e *Events) Kinds() []notify.Kind {
	var out []notify.Kind
	for _, ev := range e.All() {
		out = append(out, ev.Kind)
	}
	return out
}
