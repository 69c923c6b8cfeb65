package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"wellspring/app/config"

	"github.com/samber/do"
)

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Service is the durable per-user memory store: one JSON record per user,
// full-record overwrite on save. A per-user mutex serializes whole
// load-mutate-save cycles so two concurrent requests for the same user cannot
// clobber each other's writes.
type Service struct {
	dataDir   string
	forceFail bool

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewAtDir(filepath.Join(cfg.Storage.DataDir, "users"), cfg.Storage.ForceSaveFailure)
}

func NewAtDir(dataDir string, forceFail bool) (*Service, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create memory dir: %w", err)
	}

	return &Service{
		dataDir:   dataDir,
		forceFail: forceFail,
		userLocks: make(map[string]*sync.Mutex),
	}, nil
}

// LockUser takes the user's lock and returns the unlock func. The coach
// pipeline holds it for the whole load-mutate-save cycle of one request.
func (s *Service) LockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

// Load returns the user's record, or a freshly initialized empty one if none
// exists yet. It never reports "not found".
func (s *Service) Load(userID string) (*UserMemory, error) {
	data, err := os.ReadFile(s.userPath(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return NewUserMemory(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read memory record: %w", err)
	}

	var mem UserMemory
	if err = json.Unmarshal(data, &mem); err != nil {
		return nil, fmt.Errorf("failed to parse memory record: %w", err)
	}

	if mem.Pillars == nil {
		mem.Pillars = make(map[string]*PillarMemory)
	}

	return &mem, nil
}

// Save overwrites the user's whole record atomically (tmp file + rename).
func (s *Service) Save(userID string, mem *UserMemory) error {
	if s.forceFail {
		return errors.New("save failure forced by configuration")
	}

	mem.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory record: %w", err)
	}

	path := s.userPath(userID)
	tmpPath := path + ".tmp"

	if err = os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory record: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace memory record: %w", err)
	}

	return nil
}

// Reset deletes the user's record. Operator-invoked only.
func (s *Service) Reset(userID string) error {
	err := os.Remove(s.userPath(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete memory record: %w", err)
	}

	slog.Info("Memory record reset", "user_id", userID)

	return nil
}

func (s *Service) userPath(userID string) string {
	safe := unsafeIDChars.ReplaceAllString(userID, "_")

	return filepath.Join(s.dataDir, safe+".json")
}
