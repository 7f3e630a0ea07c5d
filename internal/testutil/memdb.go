package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

// MemDB is an in-memory model.Database. Transactions are serialized and
// roll back to a snapshot when fn returns an error or panics.
type MemDB struct {
	mu   sync.Mutex
	data *memData

	// Locks records every advisory lock taken, in order.
	Locks []map[string]string
}

type prefKey struct {
	userID uuid.UUID
	name   model.PreferenceName
}

type memData struct {
	users         map[uuid.UUID]model.User
	sessions      map[uuid.UUID]model.Session
	verifications map[uuid.UUID]model.Verification
	preferences   map[prefKey]model.Preference
}

func newMemData() *memData {
	return &memData{
		users:         map[uuid.UUID]model.User{},
		sessions:      map[uuid.UUID]model.Session{},
		verifications: map[uuid.UUID]model.Verification{},
		preferences:   map[prefKey]model.Preference{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.verifications {
		c.verifications[k] = v
	}
	for k, v := range d.preferences {
		c.preferences[k] = v
	}
	return c
}

func NewMemDB() *MemDB {
	return &MemDB{data: newMemData()}
}

var _ model.Database = (*MemDB)(nil)

func (m *MemDB) store(locked bool) *memStore {
	return &memStore{db: m, locked: locked}
}

func (m *MemDB) Users() model.UserStore                 { return m.store(false).Users() }
func (m *MemDB) Sessions() model.SessionStore           { return m.store(false).Sessions() }
func (m *MemDB) Verifications() model.VerificationStore { return m.store(false).Verifications() }
func (m *MemDB) Preferences() model.PreferenceStore     { return m.store(false).Preferences() }

func (m *MemDB) Lock(ctx context.Context, table string, keys map[string]string) error {
	return m.store(false).Lock(ctx, table, keys)
}

func (m *MemDB) InTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	defer func() {
		if p := recover(); p != nil {
			m.data = snapshot
			panic(p)
		}
		if err != nil {
			m.data = snapshot
		}
	}()

	return fn(ctx, m.store(true))
}

// AllSessions returns every stored session, live or not, ordered by creation.
func (m *MemDB) AllSessions() []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Session, 0, len(m.data.sessions))
	for _, s := range m.data.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// AllVerifications returns every stored verification.
func (m *MemDB) AllVerifications() []model.Verification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Verification, 0, len(m.data.verifications))
	for _, v := range m.data.verifications {
		out = append(out, v)
	}
	return out
}

// PutUser stores u directly, bypassing uniqueness checks.
func (m *MemDB) PutUser(u model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	m.data.users[u.ID] = u
	return u
}

type memStore struct {
	db     *MemDB
	locked bool
}

func (s *memStore) do(fn func(d *memData) error) error {
	if !s.locked {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.data)
}

func (s *memStore) Users() model.UserStore                 { return memUsers{s} }
func (s *memStore) Sessions() model.SessionStore           { return memSessions{s} }
func (s *memStore) Verifications() model.VerificationStore { return memVerifications{s} }
func (s *memStore) Preferences() model.PreferenceStore     { return memPreferences{s} }

func (s *memStore) Lock(_ context.Context, _ string, keys map[string]string) error {
	return s.do(func(*memData) error {
		copied := make(map[string]string, len(keys))
		for k, v := range keys {
			copied[k] = v
		}
		s.db.Locks = append(s.db.Locks, copied)
		return nil
	})
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

type memUsers struct{ s *memStore }

func (r memUsers) find(match func(model.User) bool) (model.User, error) {
	var found model.User
	err := r.s.do(func(d *memData) error {
		for _, u := range d.users {
			if match(u) {
				found = u
				return nil
			}
		}
		return model.ErrNotFound
	})
	return found, err
}

func eq(p *string, v string) bool { return p != nil && *p == v }

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	return r.find(func(u model.User) bool { return eq(u.Email, email) })
}

func (r memUsers) GetByPhone(_ context.Context, phone string) (model.User, error) {
	return r.find(func(u model.User) bool { return eq(u.Phone, phone) })
}

func (r memUsers) GetByGoogleUserID(_ context.Context, googleUserID string) (model.User, error) {
	return r.find(func(u model.User) bool { return eq(u.GoogleUserID, googleUserID) })
}

func checkUnique(d *memData, user model.User) error {
	for _, u := range d.users {
		if u.ID == user.ID {
			continue
		}
		switch {
		case user.Email != nil && eq(u.Email, *user.Email):
			return model.ErrEmailTaken
		case user.Phone != nil && eq(u.Phone, *user.Phone):
			return model.ErrPhoneTaken
		case user.GoogleUserID != nil && eq(u.GoogleUserID, *user.GoogleUserID):
			return model.ErrGoogleUserIDTaken
		}
	}
	return nil
}

func (r memUsers) Create(_ context.Context, user model.User) (model.User, error) {
	err := r.s.do(func(d *memData) error {
		if err := checkUnique(d, user); err != nil {
			return err
		}
		stamp(&user.CreatedAt, &user.UpdatedAt)
		d.users[user.ID] = user
		return nil
	})
	return user, err
}

func (r memUsers) Update(_ context.Context, user model.User) (model.User, error) {
	err := r.s.do(func(d *memData) error {
		existing, ok := d.users[user.ID]
		if !ok {
			return model.ErrNotFound
		}
		if err := checkUnique(d, user); err != nil {
			return err
		}
		existing.Email = user.Email
		existing.Phone = user.Phone
		existing.GoogleUserID = user.GoogleUserID
		existing.Name = user.Name
		existing.LocalTZOffset = user.LocalTZOffset
		existing.UpdatedAt = time.Now()
		d.users[user.ID] = existing
		user = existing
		return nil
	})
	return user, err
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(func(d *memData) error {
		if _, ok := d.users[id]; !ok {
			return model.ErrNotFound
		}
		delete(d.users, id)
		for sid, s := range d.sessions {
			if s.UserID == id {
				delete(d.sessions, sid)
			}
		}
		for k := range d.preferences {
			if k.userID == id {
				delete(d.preferences, k)
			}
		}
		return nil
	})
}

type memSessions struct{ s *memStore }

func (r memSessions) Create(_ context.Context, session model.Session) (model.Session, error) {
	err := r.s.do(func(d *memData) error {
		if _, ok := d.users[session.UserID]; !ok {
			return model.ErrNotFound
		}
		stamp(&session.CreatedAt, &session.UpdatedAt)
		d.sessions[session.ID] = session
		return nil
	})
	return session, err
}

func (r memSessions) GetLiveForUpdate(_ context.Context, id uuid.UUID, now time.Time) (model.Session, error) {
	var found model.Session
	err := r.s.do(func(d *memData) error {
		s, ok := d.sessions[id]
		if !ok || !s.IsLive(now) {
			return model.ErrNotFound
		}
		found = s
		return nil
	})
	return found, err
}

func (r memSessions) ExpireByDevice(_ context.Context, deviceID uuid.UUID, now time.Time) (int64, error) {
	var n int64
	err := r.s.do(func(d *memData) error {
		for id, s := range d.sessions {
			if s.DeviceID == deviceID && s.IsLive(now) {
				s.ExpiresAt = now
				s.UpdatedAt = now
				d.sessions[id] = s
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memSessions) Expire(_ context.Context, id uuid.UUID, now time.Time) error {
	return r.s.do(func(d *memData) error {
		s, ok := d.sessions[id]
		if !ok || !s.IsLive(now) {
			return model.ErrNotFound
		}
		s.ExpiresAt = now
		s.UpdatedAt = now
		d.sessions[id] = s
		return nil
	})
}

func (r memSessions) ListLiveByDevice(_ context.Context, deviceID uuid.UUID, now time.Time) ([]model.Session, error) {
	var out []model.Session
	err := r.s.do(func(d *memData) error {
		for _, s := range d.sessions {
			if s.DeviceID == deviceID && s.IsLive(now) {
				out = append(out, s)
			}
		}
		return nil
	})
	return out, err
}

type memVerifications struct{ s *memStore }

func (r memVerifications) Create(_ context.Context, v model.Verification) (model.Verification, error) {
	err := r.s.do(func(d *memData) error {
		stamp(&v.CreatedAt, &v.UpdatedAt)
		d.verifications[v.ID] = v
		return nil
	})
	return v, err
}

func (r memVerifications) latest(match func(model.Verification) bool) (model.Verification, error) {
	var found model.Verification
	err := r.s.do(func(d *memData) error {
		ok := false
		for _, v := range d.verifications {
			if match(v) && (!ok || v.CreatedAt.After(found.CreatedAt)) {
				found, ok = v, true
			}
		}
		if !ok {
			return model.ErrNotFound
		}
		return nil
	})
	return found, err
}

func (r memVerifications) GetLiveForUpdate(_ context.Context, emailOrPhone string, t model.VerificationType, now time.Time) (model.Verification, error) {
	return r.latest(func(v model.Verification) bool {
		return v.EmailOrPhone == emailOrPhone && v.Type == t && v.IsLive(now)
	})
}

func (r memVerifications) GetByIDForUpdate(_ context.Context, id uuid.UUID) (model.Verification, error) {
	return r.latest(func(v model.Verification) bool { return v.ID == id })
}

func (r memVerifications) GetLiveByTokenForUpdate(_ context.Context, emailOrPhone, token string, t model.VerificationType, now time.Time) (model.Verification, error) {
	return r.latest(func(v model.Verification) bool {
		return v.EmailOrPhone == emailOrPhone && eq(v.Token, token) && v.Type == t && v.IsLive(now)
	})
}

func (r memVerifications) Update(_ context.Context, v model.Verification) error {
	return r.s.do(func(d *memData) error {
		existing, ok := d.verifications[v.ID]
		if !ok {
			return model.ErrNotFound
		}
		existing.Attempts = v.Attempts
		existing.Token = v.Token
		existing.ExpiresAt = v.ExpiresAt
		existing.UpdatedAt = time.Now()
		d.verifications[v.ID] = existing
		return nil
	})
}

func (r memVerifications) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(func(d *memData) error {
		delete(d.verifications, id)
		return nil
	})
}

type memPreferences struct{ s *memStore }

func (r memPreferences) Get(_ context.Context, userID uuid.UUID, name model.PreferenceName) (model.Preference, error) {
	var found model.Preference
	err := r.s.do(func(d *memData) error {
		p, ok := d.preferences[prefKey{userID, name}]
		if !ok {
			return model.ErrNotFound
		}
		found = p
		return nil
	})
	return found, err
}

func (r memPreferences) Upsert(_ context.Context, p model.Preference) (model.Preference, error) {
	err := r.s.do(func(d *memData) error {
		if _, ok := d.users[p.UserID]; !ok {
			return model.ErrNotFound
		}
		key := prefKey{p.UserID, p.Name}
		if existing, ok := d.preferences[key]; ok {
			existing.Value = p.Value
			existing.UpdatedAt = time.Now()
			p = existing
		} else {
			stamp(&p.CreatedAt, &p.UpdatedAt)
		}
		d.preferences[key] = p
		return nil
	})
	return p, err
}
