package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/renthub/laptop-bookings/internal/domain"
)

// Registry issues and verifies one-time passcodes for password recovery.
// Per email there is at most one live record; issuing again overwrites it.
// Codes are stored bcrypt-hashed, consumed on successful verification and
// deleted when a verification attempt arrives past expiry.
type Registry struct {
	mu          sync.Mutex
	records     map[string]*record
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

type record struct {
	codeHash  []byte
	expiresAt time.Time
	attempts  int
}

func NewRegistry(ttl time.Duration, maxAttempts int) *Registry {
	return &Registry{
		records:     make(map[string]*record),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Issue generates a uniformly random 6-digit code for the email and returns
// it in plaintext. Any prior unconsumed record for the email is replaced.
func (r *Registry) Issue(email string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[normalize(email)] = &record{
		codeHash:  hash,
		expiresAt: r.now().Add(r.ttl),
	}
	return code, nil
}

// Verify consumes the record on a match. Outcomes:
//   - domain.ErrInvalidRequest: no live record for the email
//   - domain.ErrCodeExpired: past expiry; the record is deleted
//   - domain.ErrCodeInvalid: mismatch; the record is retained for retry
//     until expiry, bounded by the attempt cap
func (r *Registry) Verify(email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(email)
	rec, ok := r.records[key]
	if !ok {
		return domain.ErrInvalidRequest
	}

	if r.now().After(rec.expiresAt) {
		delete(r.records, key)
		return domain.ErrCodeExpired
	}

	if rec.attempts >= r.maxAttempts {
		delete(r.records, key)
		return domain.ErrCodeInvalid
	}

	if err := bcrypt.CompareHashAndPassword(rec.codeHash, []byte(code)); err != nil {
		rec.attempts++
		return domain.ErrCodeInvalid
	}

	delete(r.records, key)
	return nil
}

func randomCode() (string, error) {
	// Uniform over [100000, 999999], same space as the legacy system.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
