package server

import (
	"path/filepath"
	"testing"
)

func TestWhitelistAddRemoveAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.toml")

	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}
	wl.SetEnabled(true)

	added, err := wl.Add("Commander")
	if err != nil || !added {
		t.Fatalf("Add: (%v, %v), want (true, nil)", added, err)
	}
	added, err = wl.Add("commander")
	if err != nil || added {
		t.Fatalf("Add of a case-insensitive duplicate should report false, got (%v, %v)", added, err)
	}

	if reason, ok := wl.Allow("", "Commander"); !ok {
		t.Fatalf("Allow should permit a whitelisted alias, got reason %q", reason)
	}
	if _, ok := wl.Allow("", "Stranger"); ok {
		t.Fatal("Allow should reject a non-whitelisted alias")
	}

	reloaded, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("reload LoadWhitelist: %v", err)
	}
	if got := reloaded.Players(); len(got) != 1 || got[0] != "Commander" {
		t.Fatalf("reloaded whitelist = %v, want [Commander]", got)
	}

	removed, err := wl.Remove("COMMANDER")
	if err != nil || !removed {
		t.Fatalf("Remove: (%v, %v), want (true, nil)", removed, err)
	}
	if got := wl.Players(); len(got) != 0 {
		t.Fatalf("whitelist should be empty after removal, got %v", got)
	}
}

func TestWhitelistDisabledAllowsEveryone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.toml")
	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}
	if _, ok := wl.Allow("", "AnyoneAtAll"); !ok {
		t.Fatal("a disabled whitelist should allow any alias")
	}
}

func TestWhitelistPlayersSortedCaseInsensitively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.toml")
	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}
	for _, name := range []string{"bravo", "Alpha", "charlie"} {
		if _, err := wl.Add(name); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
	got := wl.Players()
	want := []string{"Alpha", "bravo", "charlie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Players() = %v, want %v", got, want)
		}
	}
}
