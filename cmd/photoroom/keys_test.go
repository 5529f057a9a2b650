package main

import (
	"strings"
	"testing"

	"photoroom/ask/asktest"
	"photoroom/keystore"
)

func TestManageKeys_Add(t *testing.T) {
	a, p, out, _ := newTestApp(t, false, false,
		choiceAdd,
		"live", "", "live_sk_1", true,
		choiceBack,
	)
	if err := a.manageKeys(); err != nil {
		t.Fatalf("manageKeys failed: %v", err)
	}
	if p.Remaining() != 0 {
		t.Errorf("%d scripted answers left", p.Remaining())
	}

	active, ok := a.keys.Active()
	if !ok {
		t.Fatal("no active key after add")
	}
	if active.Name != "Live Key 1" || active.Type != keystore.Live || active.Secret != "live_sk_1" {
		t.Errorf("active = %+v", active)
	}
	if !strings.Contains(out.String(), `Added "Live Key 1"`) {
		t.Errorf("missing confirmation:\n%s", out)
	}
}

func TestManageKeys_AddRejectsBlankSecret(t *testing.T) {
	a, p, _, _ := newTestApp(t, false, false,
		choiceAdd,
		"sandbox", "Mine", "", "sandbox_sk", false,
		choiceBack,
	)
	if err := a.manageKeys(); err != nil {
		t.Fatalf("manageKeys failed: %v", err)
	}
	if len(p.Notices) != 1 || p.Notices[0] != "This field is required" {
		t.Errorf("notices = %v", p.Notices)
	}
	keys := a.keys.List()
	if len(keys) != 1 || keys[0].Name != "Mine" || keys[0].Active {
		t.Errorf("keys = %+v", keys)
	}
}

func TestManageKeys_Actions(t *testing.T) {
	a, _, _, _ := newTestApp(t, true, false)
	other, err := a.keys.Add("Other", keystore.Live, "live_other", false)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := a.keys.Active()

	t.Run("activate", func(t *testing.T) {
		a.setPrompter(asktest.New(other, "activate", choiceBack))
		if err := a.manageKeys(); err != nil {
			t.Fatalf("manageKeys failed: %v", err)
		}
		if k, _ := a.keys.Active(); k.ID != other {
			t.Errorf("active = %s, want %s", k.ID, other)
		}
		if k, _ := a.keys.Get(first.ID); k.Active {
			t.Error("previous key still active")
		}
	})

	t.Run("remove declined", func(t *testing.T) {
		a.setPrompter(asktest.New(first.ID, "remove", false, choiceBack))
		if err := a.manageKeys(); err != nil {
			t.Fatalf("manageKeys failed: %v", err)
		}
		if _, ok := a.keys.Get(first.ID); !ok {
			t.Error("key removed without confirmation")
		}
	})

	t.Run("remove active", func(t *testing.T) {
		a.setPrompter(asktest.New(other, "remove", true, choiceBack))
		if err := a.manageKeys(); err != nil {
			t.Fatalf("manageKeys failed: %v", err)
		}
		if _, ok := a.keys.Get(other); ok {
			t.Error("key not removed")
		}
		if _, ok := a.keys.Active(); ok {
			t.Error("removed key still active")
		}
	})
}

func TestKeyActionQuestion(t *testing.T) {
	q := keyActionQuestion(keystore.Key{Name: "A", Active: true})
	if q.Choices[0].Name != "deactivate" || q.Default != "deactivate" {
		t.Errorf("first choice = %+v", q.Choices[0])
	}
	q = keyActionQuestion(keystore.Key{Name: "A"})
	if q.Choices[0].Name != "activate" {
		t.Errorf("first choice = %+v", q.Choices[0])
	}
}
