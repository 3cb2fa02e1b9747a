package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the speaker of a single message.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
	RoleFunction
)

// roleAliases maps every accepted spelling in the source dump to its role.
// Matching is case-sensitive.
var roleAliases = map[string]Role{
	"System":    RoleSystem,
	"system":    RoleSystem,
	"User":      RoleUser,
	"human":     RoleUser,
	"user":      RoleUser,
	"Assistant": RoleAssistant,
	"gpt":       RoleAssistant,
	"bing":      RoleAssistant,
	"chatgpt":   RoleAssistant,
	"bard":      RoleAssistant,
	"assistant": RoleAssistant,
	"Function":  RoleFunction,
}

// ParseRole normalizes a raw role alias. Unknown aliases return an
// *UnknownRoleError, which matches ErrUnknownRoleAlias.
func ParseRole(raw string) (Role, error) {
	r, ok := roleAliases[raw]
	if !ok {
		return 0, &UnknownRoleError{Alias: raw}
	}
	return r, nil
}

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	case RoleFunction:
		return "Function"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil || isNull(data) {
		return fmt.Errorf("%w: role must be a string", ErrMalformedRecord)
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is a single utterance. Two messages are equal when role and
// content are equal, so == is the structural comparison used by merging.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts the role under "role" or "from" and the content
// under "content" or "value". Exactly one spelling of each must be present.
func (m *Message) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: message must be an object", ErrMalformedRecord)
	}

	rawRole, err := aliasedField(fields, "role", "from")
	if err != nil {
		return err
	}
	rawContent, err := aliasedField(fields, "content", "value")
	if err != nil {
		return err
	}

	var role Role
	if err := role.UnmarshalJSON(rawRole); err != nil {
		return err
	}
	var content string
	if err := json.Unmarshal(rawContent, &content); err != nil || isNull(rawContent) {
		return fmt.Errorf("%w: content must be a string", ErrMalformedRecord)
	}

	m.Role = role
	m.Content = content
	return nil
}

func aliasedField(fields map[string]json.RawMessage, name, alias string) (json.RawMessage, error) {
	v, hasName := fields[name]
	a, hasAlias := fields[alias]
	switch {
	case hasName && hasAlias:
		return nil, fmt.Errorf("%w: duplicate field %q (also given as %q)", ErrMalformedRecord, name, alias)
	case hasName:
		return v, nil
	case hasAlias:
		return a, nil
	default:
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
	}
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// RawFragment is one record of the source dump, before merging.
type RawFragment struct {
	RawID    string
	Messages []Message
}

// CanonicalID strips the "_N" fragment suffix: everything from the first
// underscore on is discarded.
func (f RawFragment) CanonicalID() string {
	return CanonicalID(f.RawID)
}

// CanonicalID returns the prefix of rawID before its first underscore.
func CanonicalID(rawID string) string {
	id, _, _ := strings.Cut(rawID, "_")
	return id
}
