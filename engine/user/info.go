package user

import (
	"os"
	osuser "os/user"
	"runtime"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Info describes the account running the application.
type Info struct {
	Username string
	Name     string
	Home     string
	Hostname string
	OS       string
	Arch     string
	Language language.Tag
}

// String returns the display name, falling back to the login name.
func (i Info) String() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Username
}

// LanguageName returns the name of the preferred language in that language,
// e.g. "Deutsch" for de.
func (i Info) LanguageName() string {
	if i.Language == language.Und {
		return ""
	}
	return display.Self.Name(i.Language)
}

// Lookup gathers an Info. Missing fields are left empty.
type Lookup func() (Info, error)

// Current reads the account database, the host name and the locale
// environment.
func Current() (Info, error) {
	info := Info{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Language: Locale(os.Getenv),
	}
	if u, err := osuser.Current(); err == nil {
		info.Username = u.Username
		info.Name = displayName(u.Name)
		info.Home = u.HomeDir
	} else {
		info.Username = firstEnv(os.Getenv, "USER", "USERNAME", "LOGNAME")
		if home, err := os.UserHomeDir(); err == nil {
			info.Home = home
		}
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}
	return info, nil
}

// displayName drops the extra GECOS fields (office, phone) some systems keep
// after the full name.
func displayName(gecos string) string {
	name, _, _ := strings.Cut(gecos, ",")
	return strings.TrimSpace(name)
}

// Locale returns the preferred language from LC_ALL, LC_MESSAGES or LANG,
// in that order of precedence. "C", "POSIX" and unparsable values give
// language.Und.
func Locale(getenv func(string) string) language.Tag {
	value := firstEnv(getenv, "LC_ALL", "LC_MESSAGES", "LANG")
	if value == "" {
		return language.Und
	}
	// language_TERRITORY.codeset@modifier
	value, _, _ = strings.Cut(value, "@")
	value, _, _ = strings.Cut(value, ".")
	if value == "C" || value == "POSIX" {
		return language.Und
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}
