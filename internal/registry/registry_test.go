package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	return NewManager(filepath.Join(dir, "users.cfg"), "")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestEnsureInitialized(t *testing.T) {
	m := newTestManager(t)

	if err := m.EnsureInitialized(); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}

	content := readFile(t, m.Path())
	if !strings.Contains(content, "[ADMINS]") || !strings.Contains(content, "[USERS]") {
		t.Errorf("template missing section headers:\n%s", content)
	}

	// Second call is a no-op, not an error.
	if err := m.EnsureInitialized(); err != nil {
		t.Fatalf("second EnsureInitialized: %v", err)
	}
}

func TestEnsureInitializedPreservesExisting(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	before := readFile(t, m.Path())

	if err := m.EnsureInitialized(); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	if after := readFile(t, m.Path()); after != before {
		t.Error("EnsureInitialized rewrote an existing registry")
	}
}

func TestListLazilyInitializes(t *testing.T) {
	m := newTestManager(t)

	admins, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 0 || len(users) != 0 {
		t.Errorf("expected empty lists, got admins=%v users=%v", admins, users)
	}

	if _, err := os.Stat(m.Path()); err != nil {
		t.Errorf("List should create the registry file: %v", err)
	}
}

func TestAddAndList(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if err := m.AddUser("222", "B"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	admins, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 1 || admins[0] != (Entry{ID: "111", Name: "A"}) {
		t.Errorf("admins = %v, want [{111 A}]", admins)
	}
	if len(users) != 1 || users[0] != (Entry{ID: "222", Name: "B"}) {
		t.Errorf("users = %v, want [{222 B}]", users)
	}
}

func TestAddWithoutName(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddUser("333", ""); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	_, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].ID != "333" || users[0].Name != "" {
		t.Errorf("users = %v, want [{333 }]", users)
	}
}

func TestAddInsertsAfterHeader(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "First"); err != nil {
		t.Fatalf("AddAdmin 111: %v", err)
	}
	if err := m.AddAdmin("222", "Second"); err != nil {
		t.Fatalf("AddAdmin 222: %v", err)
	}

	// Newest insertion sits immediately under the header.
	admins, _, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 2 || admins[0].ID != "222" || admins[1].ID != "111" {
		t.Errorf("admins = %v, want 222 before 111", admins)
	}
}

func TestAddDuplicateAcrossSections(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	before := readFile(t, m.Path())

	if err := m.AddUser("111", "Elsewhere"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got: %v", err)
	}
	if err := m.AddAdmin("111", "Again"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got: %v", err)
	}

	if after := readFile(t, m.Path()); after != before {
		t.Error("failed add modified the registry")
	}
}

func TestAddPrefixIDsAreDistinct(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddUser("123", "Long"); err != nil {
		t.Fatalf("AddUser 123: %v", err)
	}

	// "12" is a prefix of "123" but a different identifier.
	if err := m.AddUser("12", "Short"); err != nil {
		t.Fatalf("AddUser 12: %v", err)
	}

	_, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %v, want both 12 and 123", users)
	}
}

func TestAddInvalidID(t *testing.T) {
	m := newTestManager(t)

	for _, id := range []string{"", "  ", "12a", "-5", "one"} {
		if err := m.AddAdmin(id, "X"); !errors.Is(err, ErrInvalidID) {
			t.Errorf("AddAdmin(%q): expected ErrInvalidID, got: %v", id, err)
		}
	}
}

func TestRemove(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if err := m.AddUser("222", "B"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	if err := m.Remove("111"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	admins, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 0 {
		t.Errorf("admins = %v, want empty", admins)
	}
	if len(users) != 1 || users[0].ID != "222" {
		t.Errorf("users = %v, want [{222 B}]", users)
	}
}

func TestRemoveExactMatchOnly(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddUser("123", "Long"); err != nil {
		t.Fatalf("AddUser 123: %v", err)
	}
	if err := m.AddUser("12", "Short"); err != nil {
		t.Fatalf("AddUser 12: %v", err)
	}

	if err := m.Remove("12"); err != nil {
		t.Fatalf("Remove 12: %v", err)
	}

	_, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].ID != "123" {
		t.Errorf("users = %v, want only 123 to survive", users)
	}
}

func TestRemoveMissingLeavesFileUnchanged(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	before := readFile(t, m.Path())

	if err := m.Remove("999"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got: %v", err)
	}
	if after := readFile(t, m.Path()); after != before {
		t.Error("failed remove modified the registry")
	}
}

func TestRemoveNoFile(t *testing.T) {
	m := newTestManager(t)

	if err := m.Remove("111"); !errors.Is(err, ErrRegistryNotFound) {
		t.Errorf("expected ErrRegistryNotFound, got: %v", err)
	}
}

func TestMutationsPreserveComments(t *testing.T) {
	m := newTestManager(t)
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if err := m.AddUser("222", "B"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := m.Remove("111"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	content := readFile(t, m.Path())
	for _, want := range []string{"# users.cfg - bot access lists", "# 123456789  # Example Admin", "[ADMINS]", "[USERS]"} {
		if !strings.Contains(content, want) {
			t.Errorf("comment/format line %q lost after edits:\n%s", want, content)
		}
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "users.cfg"), filepath.Join(dir, "backups"))
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}

	path, err := m.Backup()
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	if got, want := readFile(t, path), readFile(t, m.Path()); got != want {
		t.Error("backup differs from registry content")
	}
	if !strings.HasPrefix(filepath.Base(path), "users.cfg.") || !strings.HasSuffix(path, ".bak") {
		t.Errorf("unexpected backup name: %s", path)
	}
}

func TestBackupTwiceProducesDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "users.cfg"), filepath.Join(dir, "backups"))
	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}

	// Step the clock one second per call so the timestamps differ even
	// when both backups happen within the same wall-clock second.
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	first, err := m.Backup()
	if err != nil {
		t.Fatalf("first Backup: %v", err)
	}
	second, err := m.Backup()
	if err != nil {
		t.Fatalf("second Backup: %v", err)
	}

	if first == second {
		t.Fatalf("both backups went to %s", first)
	}
	want := readFile(t, m.Path())
	for _, path := range []string{first, second} {
		if got := readFile(t, path); got != want {
			t.Errorf("backup %s differs from registry content", path)
		}
	}
}

func TestBackupNoFile(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Backup(); !errors.Is(err, ErrRegistryNotFound) {
		t.Errorf("expected ErrRegistryNotFound, got: %v", err)
	}
}

func TestScenarioEmptyRegistry(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddAdmin("111", "A"); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if err := m.AddUser("222", "B"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	admins, users, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(admins) != 1 || admins[0] != (Entry{ID: "111", Name: "A"}) {
		t.Errorf("admins = %v, want [{111 A}]", admins)
	}
	if len(users) != 1 || users[0] != (Entry{ID: "222", Name: "B"}) {
		t.Errorf("users = %v, want [{222 B}]", users)
	}
}
