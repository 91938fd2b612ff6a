package session

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// Default credentials used when none are configured.
const (
	DefaultModerators = "PS:faa,Pepe Shneyne:faa"
	DefaultListeners  = "user:1234,listener:1234,guest:0000"
)

type account struct {
	display  string
	password string
	role     Role
}

// Accounts is the static credential table. Usernames match case-insensitively.
type Accounts struct {
	byName map[string]account
}

// ParseAccounts builds the table from "name:password" lists separated by commas.
// Empty lists fall back to the defaults. A name present in both lists is a
// moderator.
func ParseAccounts(moderators, listeners string) (*Accounts, error) {
	if strings.TrimSpace(moderators) == "" {
		moderators = DefaultModerators
	}
	if strings.TrimSpace(listeners) == "" {
		listeners = DefaultListeners
	}

	a := &Accounts{byName: make(map[string]account)}
	if err := a.add(listeners, RoleListener); err != nil {
		return nil, err
	}
	if err := a.add(moderators, RoleModerator); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Accounts) add(list string, role Role) error {
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, pass, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || pass == "" {
			return fmt.Errorf("invalid %s account entry %q: want name:password", role, entry)
		}
		a.byName[strings.ToLower(name)] = account{display: name, password: pass, role: role}
	}
	return nil
}

// Authenticate checks a username/password pair and returns the canonical
// display name and role.
func (a *Accounts) Authenticate(username, password string) (string, Role, bool) {
	acc, ok := a.byName[strings.ToLower(strings.TrimSpace(username))]
	if !ok || password == "" {
		return "", "", false
	}
	if subtle.ConstantTimeCompare([]byte(acc.password), []byte(password)) != 1 {
		return "", "", false
	}
	return acc.display, acc.role, true
}
