package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fdg312/carb-coach/internal/plan"
	"github.com/fdg312/carb-coach/internal/storage"
	"github.com/google/uuid"
)

// Keys in the durable key-value store.
const (
	KeyProfiles        = "scc_profiles"
	KeyActiveProfileID = "scc_active_profile_id"
)

const DefaultProfileName = "我的碳循环计划"

var (
	ErrNotFound             = errors.New("profile not found")
	ErrEmptyName            = errors.New("name cannot be empty")
	ErrInvalidSchedule      = errors.New("invalid weekly schedule")
	ErrGenerationFailed     = errors.New("plan generation failed")
	ErrGenerationInProgress = errors.New("plan generation already in progress")
	// ErrPersistFailed: the in-memory change is applied, the durable copy is
	// stale until the next successful save.
	ErrPersistFailed = errors.New("failed to persist profiles")
)

// PlanGenerator is the AI plan gateway as seen by the store.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, stats plan.UserStats) (plan.FullPlan, error)
}

type Logger interface {
	Printf(format string, v ...any)
}

// Store owns the profile collection and the active profile id. Every
// mutation is written through to the key-value store before it returns.
type Store struct {
	mu  sync.Mutex
	kv  storage.KeyValue
	gen PlanGenerator
	log Logger

	now   func() time.Time
	newID func() string

	generating atomic.Bool

	profiles []Profile
	activeID string
}

func NewStore(kv storage.KeyValue, gen PlanGenerator, logger Logger) *Store {
	return &Store{
		kv:    kv,
		gen:   gen,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory collection with the persisted one. Unreadable
// data is logged and leaves an empty collection. A stored active id that no
// longer exists falls back to the last profile.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = nil
	s.activeID = ""

	raw, ok, err := s.kv.Get(ctx, KeyProfiles)
	if err != nil {
		s.logf("WARN profiles: load_failed=%q", err.Error())
		return
	}
	if !ok {
		s.logf("INFO profiles: loaded=0 (nothing stored)")
		return
	}

	var loaded []Profile
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.logf("WARN profiles: load_failed=%q fallback=empty", err.Error())
		return
	}

	activeID, _, err := s.kv.Get(ctx, KeyActiveProfileID)
	if err != nil {
		s.logf("WARN profiles: active_id_load_failed=%q", err.Error())
		activeID = ""
	}

	s.profiles = loaded
	if len(loaded) > 0 && s.indexOf(activeID) < 0 {
		activeID = loaded[len(loaded)-1].ID
	}
	if len(loaded) == 0 {
		activeID = ""
	}
	s.activeID = activeID

	s.logf("INFO profiles: loaded=%d active=%s", len(loaded), dashIfEmpty(activeID))
}

// Save persists the full collection and the active id.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	profiles := s.profiles
	if profiles == nil {
		profiles = []Profile{}
	}
	data, err := json.Marshal(profiles)
	if err != nil {
		return s.persistErr(err)
	}
	if err := s.kv.Set(ctx, KeyProfiles, string(data)); err != nil {
		return s.persistErr(err)
	}

	if s.activeID != "" {
		err = s.kv.Set(ctx, KeyActiveProfileID, s.activeID)
	} else {
		err = s.kv.Remove(ctx, KeyActiveProfileID)
	}
	if err != nil {
		return s.persistErr(err)
	}
	return nil
}

func (s *Store) persistErr(err error) error {
	s.logf("WARN profiles: save_failed=%q", err.Error())
	return fmt.Errorf("%w: %v", ErrPersistFailed, err)
}

// Create generates a plan for stats and stores it as a new active profile.
// Only one generation runs at a time; on gateway failure nothing changes.
func (s *Store) Create(ctx context.Context, name string, stats plan.UserStats) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProfileName
	}
	if err := stats.Validate(); err != nil {
		return Profile{}, err
	}

	if !s.generating.CompareAndSwap(false, true) {
		return Profile{}, ErrGenerationInProgress
	}
	defer s.generating.Store(false)

	started := s.now()
	fp, err := s.gen.GeneratePlan(ctx, stats)
	if err == nil {
		err = fp.WeeklySchedule.Validate()
	}
	if err != nil {
		s.logf("WARN profiles: generation_failed=%q", err.Error())
		return Profile{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	templates, counts := plan.ExtractTemplates(fp)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Profile{
		ID:                s.newID(),
		Name:              name,
		UserStats:         stats,
		Plan:              fp.Clone(),
		Templates:         &templates,
		RecommendedCounts: &counts,
		Logs:              []DailyLog{},
		CreatedAt:         s.now().UTC(),
	}
	s.profiles = append(s.profiles, p)
	s.activeID = p.ID

	s.logf("INFO profiles: created id=%s counts=%d/%d/%d generation_ms=%d",
		p.ID, counts.High, counts.Medium, counts.Low, s.now().Sub(started).Milliseconds())

	return p.clone(), s.saveLocked(ctx)
}

// Generating reports whether a plan generation is in flight.
func (s *Store) Generating() bool {
	return s.generating.Load()
}

func (s *Store) SwitchActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrNotFound
	}
	s.activeID = id
	return s.saveLocked(ctx)
}

// ClearActive leaves the collection without an active profile, as when the
// user starts a new plan.
func (s *Store) ClearActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = ""
	return s.saveLocked(ctx)
}

// Delete removes a profile. Deleting the active profile activates the first
// remaining one, or none.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)

	if s.activeID == id {
		s.activeID = ""
		if len(s.profiles) > 0 {
			s.activeID = s.profiles[0].ID
		}
	}
	return true, s.saveLocked(ctx)
}

func (s *Store) Rename(ctx context.Context, id, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Profile{}, ErrNotFound
	}
	s.profiles[idx].Name = name
	return s.profiles[idx].clone(), s.saveLocked(ctx)
}

// UpdateSchedule replaces the active profile's weekly schedule. It is a
// no-op (false, nil) for unknown or inactive profiles.
func (s *Store) UpdateSchedule(ctx context.Context, id string, schedule plan.WeeklySchedule) (bool, error) {
	if err := schedule.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndex(id)
	if idx < 0 {
		return false, nil
	}
	s.profiles[idx].Plan.WeeklySchedule = schedule.Clone()
	return true, s.saveLocked(ctx)
}

// ChangeDayType reassigns one day of the active profile to ct using the
// profile's templates. Returns false when the profile is not active, the
// index is out of range or ct has no template.
func (s *Store) ChangeDayType(ctx context.Context, id string, index int, ct plan.CarbType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndex(id)
	if idx < 0 {
		return false, nil
	}
	p := &s.profiles[idx]
	templates := plan.EffectiveTemplates(p.Templates, p.Plan.WeeklySchedule)
	updated, ok := plan.ChangeDayType(p.Plan.WeeklySchedule, index, ct, templates)
	if !ok {
		return false, nil
	}
	p.Plan.WeeklySchedule = updated
	return true, s.saveLocked(ctx)
}

// AppendLog appends to the named profile's logs. An empty date means today.
func (s *Store) AppendLog(ctx context.Context, id string, entry DailyLog) (bool, error) {
	if err := entry.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	entry = entry.clone()
	if entry.Date == "" {
		entry.Date = s.now().Format(dateLayout)
	}
	s.profiles[idx].Logs = append(s.profiles[idx].Logs, entry)
	return true, s.saveLocked(ctx)
}

// List returns copies of all profiles in collection order.
func (s *Store) List() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.clone()
	}
	return out
}

func (s *Store) Get(id string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Profile{}, false
	}
	return s.profiles[idx].clone(), true
}

func (s *Store) Active() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return Profile{}, false
	}
	return s.profiles[idx].clone(), true
}

// ActiveID is empty when no profile is active.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// PlanContext returns the plan JSON of profileID, or of the active profile
// when profileID is empty. Used as chat context.
func (s *Store) PlanContext(profileID string) (string, bool) {
	var (
		p  Profile
		ok bool
	)
	if profileID == "" {
		p, ok = s.Active()
	} else {
		p, ok = s.Get(profileID)
	}
	if !ok {
		return "", false
	}
	data, err := json.Marshal(p.Plan)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndex(id string) int {
	if id == "" || id != s.activeID {
		return -1
	}
	return s.indexOf(id)
}

func (s *Store) logf(format string, v ...any) {
	if s.log == nil {
		return
	}
	s.log.Printf(format, v...)
}

func dashIfEmpty(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
