package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockStoreSpec implements ValidatingSpec for testing FileStore
type mockStoreSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, dir, file, id string, spec *mockStoreSpec) {
	t.Helper()

	asset := Asset[*mockStoreSpec]{
		Version:    1,
		Identifier: Identifier(id),
		Spec:       spec,
	}
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	err = os.WriteFile(filepath.Join(dir, file), data, 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, tmpDir, "item-1.json", "item-1", &mockStoreSpec{Name: "First", Value: 1})
	writeAsset(t, tmpDir, "item-2.json", "item-2", &mockStoreSpec{Name: "Second", Value: 2})

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)

	item1, ok := store.Get("item-1")
	if !ok {
		t.Fatal("expected item-1 to be loaded")
	}
	testutil.AssertEqual(t, "item-1 name", item1.Name, "First")
	testutil.AssertEqual(t, "item-1 value", item1.Value, 1)
}

func TestNewFileStore_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "bad.json"), []byte(`{invalid json`), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err = NewFileStore[*mockStoreSpec](tmpDir)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewFileStore_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()

	// Version 0 fails asset validation
	asset := Asset[*mockStoreSpec]{
		Version:    0,
		Identifier: "test",
		Spec:       &mockStoreSpec{Name: "Test", Value: 1},
	}
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	err = os.WriteFile(filepath.Join(tmpDir, "test.json"), data, 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err = NewFileStore[*mockStoreSpec](tmpDir)
	if err == nil {
		t.Error("expected validation error")
	}
}

func TestNewFileStore_DuplicateKey(t *testing.T) {
	tmpDir := t.TempDir()

	subDir := filepath.Join(tmpDir, "subdir")
	err := os.Mkdir(subDir, 0755)
	if err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	// Two files with the same ID in different directories
	writeAsset(t, tmpDir, "file1.json", "duplicate-id", &mockStoreSpec{Name: "Test", Value: 1})
	writeAsset(t, subDir, "file2.json", "duplicate-id", &mockStoreSpec{Name: "Test", Value: 1})

	_, err = NewFileStore[*mockStoreSpec](tmpDir)
	if err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestNewFileStore_IgnoresNonJSONFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, tmpDir, "valid.json", "valid", &mockStoreSpec{Name: "Valid", Value: 1})

	err := os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("ignore me"), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 1)
}

func TestFileStore_Get(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"existing": {Name: "Test", Value: 42},
	}

	tests := map[string]struct {
		id       string
		expFound bool
		expName  string
		expValue int
	}{
		"get existing record": {
			id:       "existing",
			expFound: true,
			expName:  "Test",
			expValue: 42,
		},
		"get non-existing record": {
			id:       "nonexistent",
			expFound: false,
		},
		"get empty id": {
			id:       "",
			expFound: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, ok := store.Get(tt.id)

			testutil.AssertEqual(t, "found", ok, tt.expFound)
			if tt.expFound {
				testutil.AssertEqual(t, "name", result.Name, tt.expName)
				testutil.AssertEqual(t, "value", result.Value, tt.expValue)
			}
		})
	}
}

func TestFileStore_GetAll(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"one": {Name: "One", Value: 1},
		"two": {Name: "Two", Value: 2},
	}

	result := store.GetAll()

	testutil.AssertEqual(t, "count", len(result), 2)

	// Mutating the returned map must not affect the store
	delete(result, "one")
	testutil.AssertEqual(t, "store count", len(store.records), 2)
}

func TestFileStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("test-id", &mockStoreSpec{Name: "TestItem", Value: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, ok := store.Get("test-id")
	if !ok {
		t.Fatal("expected cached record")
	}
	testutil.AssertEqual(t, "cached name", cached.Name, "TestItem")
	testutil.AssertEqual(t, "cached value", cached.Value, 100)

	data, err := os.ReadFile(filepath.Join(tmpDir, "test-id.json"))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}

	var asset Asset[*mockStoreSpec]
	err = json.Unmarshal(data, &asset)
	if err != nil {
		t.Fatalf("failed to unmarshal saved data: %v", err)
	}

	testutil.AssertEqual(t, "asset version", asset.Version, uint(1))
	testutil.AssertEqual(t, "asset id", asset.Identifier, Identifier("test-id"))
	testutil.AssertEqual(t, "spec name", asset.Spec.Name, "TestItem")
}

func TestFileStore_Save_OverwritesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("test-id", &mockStoreSpec{Name: "Initial", Value: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = store.Save("test-id", &mockStoreSpec{Name: "Updated", Value: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, _ := store.Get("test-id")
	testutil.AssertEqual(t, "name", cached.Name, "Updated")
	testutil.AssertEqual(t, "value", cached.Value, 2)
}

func TestFileStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("test-id", &mockStoreSpec{Name: "Doomed", Value: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.Delete("test-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ok := store.Get("test-id")
	testutil.AssertEqual(t, "found after delete", ok, false)

	_, err = os.Stat(filepath.Join(tmpDir, "test-id.json"))
	if !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, got %v", err)
	}
}

func TestFileStore_Delete_UnknownID(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Delete("never-existed")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFileStore_SaveSurvivesReload(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("durable", &mockStoreSpec{Name: "Durable", Value: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error reloading store: %v", err)
	}

	got, ok := reloaded.Get("durable")
	if !ok {
		t.Fatal("expected record to survive reload")
	}
	testutil.AssertEqual(t, "name", got.Name, "Durable")
	testutil.AssertEqual(t, "value", got.Value, 7)
}

func TestFileStore_filePath(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	result := store.filePath("test-id")

	expected := filepath.Join(tmpDir, "test-id.json")
	testutil.AssertEqual(t, "file path", result, expected)
}
