package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

var (
	// ErrInvalidID indicates the identifier is empty or not numeric.
	ErrInvalidID = errors.New("invalid user id")

	// ErrDuplicateID indicates the identifier already exists in the registry.
	ErrDuplicateID = errors.New("id already registered")

	// ErrEntryNotFound indicates no entry with that identifier exists.
	ErrEntryNotFound = errors.New("id not found")

	// ErrRegistryNotFound indicates the registry file does not exist.
	ErrRegistryNotFound = errors.New("user registry not found")
)

// backupStamp is the second-resolution timestamp used in backup names.
const backupStamp = "20060102_150405"

// initialTemplate is written when the registry file is first created.
// Comment lines never parse as entries, so the examples are inert.
var initialTemplate = []string{
	"# users.cfg - bot access lists",
	"#",
	"# One entry per line: numeric Telegram ID, optionally followed by",
	"# \"# display name\". Blank lines and lines starting with \"#\" are ignored.",
	"",
	"[ADMINS]",
	"# 123456789  # Example Admin",
	"",
	"[USERS]",
	"# 987654321  # Example User",
	"",
}

// Manager provides safe, idempotent operations on a registry file.
// Mutations take an exclusive file lock and replace the file atomically,
// so concurrent invocations cannot interleave partial writes.
type Manager struct {
	mu        sync.Mutex
	path      string
	backupDir string

	// now stamps backup names; swappable for tests.
	now func() time.Time
}

// NewManager creates a Manager for the registry at path. Backups are
// written to backupDir, or beside the registry when backupDir is empty.
func NewManager(path, backupDir string) *Manager {
	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}
	return &Manager{path: path, backupDir: backupDir, now: time.Now}
}

// Path returns the registry file path.
func (m *Manager) Path() string {
	return m.path
}

// EnsureInitialized creates the registry file with empty, annotated
// sections if it does not exist. It is a no-op when the file is present.
func (m *Manager) EnsureInitialized() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireFileLock()
	if err != nil {
		return err
	}
	defer unlock()

	return m.initLocked()
}

func (m *Manager) initLocked() error {
	if _, err := os.Stat(m.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	return m.writeLocked(initialTemplate)
}

// List returns the admin and user entries in file order, skipping
// comments and blank lines. A missing registry is lazily initialized
// and reported as two empty lists.
func (m *Manager) List() (admins, users []Entry, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireFileLock()
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	lines, err := m.loadLocked()
	if err != nil {
		if !errors.Is(err, ErrRegistryNotFound) {
			return nil, nil, err
		}
		if err := m.initLocked(); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}

	section := Section("")
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case SectionAdmins.Header():
			section = SectionAdmins
			continue
		case SectionUsers.Header():
			section = SectionUsers
			continue
		}

		entry, ok := parseEntry(line)
		if !ok {
			continue
		}
		switch section {
		case SectionAdmins:
			admins = append(admins, entry)
		case SectionUsers:
			users = append(users, entry)
		}
	}

	return admins, users, nil
}

// AddAdmin registers id in the ADMINS section.
func (m *Manager) AddAdmin(id, name string) error {
	return m.add(SectionAdmins, id, name)
}

// AddUser registers id in the USERS section.
func (m *Manager) AddUser(id, name string) error {
	return m.add(SectionUsers, id, name)
}

// add inserts a new entry line immediately after the section header.
// Duplicate detection compares parsed IDs for exact equality, so id
// "12" never collides with a stored "123". On any failure the file is
// left byte-for-byte unchanged.
func (m *Manager) add(section Section, id, name string) error {
	id = strings.TrimSpace(id)
	if !isDigits(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireFileLock()
	if err != nil {
		return err
	}
	defer unlock()

	lines, err := m.loadLocked()
	if err != nil {
		if !errors.Is(err, ErrRegistryNotFound) {
			return err
		}
		if err := m.initLocked(); err != nil {
			return err
		}
		lines, err = m.loadLocked()
		if err != nil {
			return err
		}
	}

	for _, line := range lines {
		if entry, ok := parseEntry(line); ok && entry.ID == id {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
	}

	entry := Entry{ID: id, Name: strings.TrimSpace(name)}
	header := section.Header()
	inserted := false
	out := make([]string, 0, len(lines)+2)
	for _, line := range lines {
		out = append(out, line)
		if !inserted && strings.TrimSpace(line) == header {
			out = append(out, entry.String())
			inserted = true
		}
	}
	if !inserted {
		// Section header missing; recreate it at the end of the file.
		out = append(out, "", header, entry.String())
	}

	return m.writeLocked(out)
}

// Remove deletes every entry whose ID equals id, from either section.
func (m *Manager) Remove(id string) error {
	id = strings.TrimSpace(id)
	if !isDigits(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireFileLock()
	if err != nil {
		return err
	}
	defer unlock()

	lines, err := m.loadLocked()
	if err != nil {
		return err
	}

	removed := false
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if entry, ok := parseEntry(line); ok && entry.ID == id {
			removed = true
			continue
		}
		out = append(out, line)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	return m.writeLocked(out)
}

// Backup copies the registry to a timestamped file in the backup
// directory and returns the new path. Second-resolution timestamps are
// assumed distinct across invocations; there is no collision retry.
func (m *Manager) Backup() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireFileLock()
	if err != nil {
		return "", err
	}
	defer unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRegistryNotFound, m.path)
		}
		return "", fmt.Errorf("reading registry: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	name := fmt.Sprintf("%s.%s.bak", filepath.Base(m.path), m.now().Format(backupStamp))
	dest := filepath.Join(m.backupDir, name)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	return dest, nil
}

// loadLocked reads the registry as raw lines (caller must hold the locks).
func (m *Manager) loadLocked() ([]string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, m.path)
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// writeLocked replaces the registry atomically: the new content goes to
// a uniquely named temp file in the same directory, then renames over
// the registry so an interrupted write can never truncate it.
func (m *Manager) writeLocked(lines []string) error {
	dir := filepath.Dir(m.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(m.path), uuid.NewString()))

	data := []byte(strings.Join(lines, "\n") + "\n")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// acquireFileLock takes the cross-process lock guarding the registry.
func (m *Manager) acquireFileLock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	lock := flock.New(m.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking registry: %w", err)
	}
	return func() { lock.Unlock() }, nil
}
