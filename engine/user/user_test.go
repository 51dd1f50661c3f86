package user

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/spaghettifunk/cala/engine/core"
)

func TestLocale(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want language.Tag
	}{
		{"empty", nil, language.Und},
		{"lang", map[string]string{"LANG": "de_DE.UTF-8"}, language.MustParse("de-DE")},
		{"modifier", map[string]string{"LANG": "ca_ES.UTF-8@valencia"}, language.MustParse("ca-ES")},
		{"messages wins over lang", map[string]string{"LANG": "en_US", "LC_MESSAGES": "fr_FR"}, language.MustParse("fr-FR")},
		{"all wins", map[string]string{"LANG": "en_US", "LC_MESSAGES": "fr_FR", "LC_ALL": "it"}, language.MustParse("it")},
		{"posix", map[string]string{"LANG": "C.UTF-8"}, language.Und},
		{"garbage", map[string]string{"LANG": "!!"}, language.Und},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locale(func(k string) string { return tt.env[k] })
			if got != tt.want {
				t.Fatalf("Locale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	if got := (Info{Username: "ada", Name: "Ada Lovelace"}).String(); got != "Ada Lovelace" {
		t.Errorf("String() = %q, want %q", got, "Ada Lovelace")
	}
	if got := (Info{Username: "ada"}).String(); got != "ada" {
		t.Errorf("String() = %q, want %q", got, "ada")
	}
	if got := (Info{Language: language.German}).LanguageName(); got != "Deutsch" {
		t.Errorf("LanguageName() = %q, want %q", got, "Deutsch")
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("Ada Lovelace,Room 1,555"); got != "Ada Lovelace" {
		t.Fatalf("displayName() = %q", got)
	}
}

func TestCurrent(t *testing.T) {
	info, err := Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if info.OS == "" || info.Arch == "" {
		t.Fatalf("Current() = %+v, want OS and Arch", info)
	}
}

func TestUserRefresh(t *testing.T) {
	calls := 0
	u := New(nil, WithLookup(func() (Info, error) {
		calls++
		if calls == 1 {
			return Info{Username: "first"}, nil
		}
		return Info{Username: "second"}, nil
	}))

	if err := u.Update(0); !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("Update() error = %v, want ErrNotInitialized", err)
	}
	if err := u.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := u.Initialize(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if u.String() != "first" {
		t.Fatalf("String() = %q, want first", u.String())
	}

	u.Update(0)
	if calls != 1 {
		t.Fatalf("lookup called %d times without Refresh", calls)
	}

	u.Refresh()
	if u.Info().Username != "first" {
		t.Fatal("Refresh queried before Update")
	}
	if err := u.Update(0); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if u.Info().Username != "second" {
		t.Fatalf("Info().Username = %q, want second", u.Info().Username)
	}
}

func TestUserLookupFailure(t *testing.T) {
	boom := errors.New("boom")
	u := New(nil, WithLookup(func() (Info, error) { return Info{}, boom }))
	if err := u.Initialize(); !errors.Is(err, boom) {
		t.Fatalf("Initialize() error = %v, want boom", err)
	}
}
