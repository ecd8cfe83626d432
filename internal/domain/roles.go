package domain

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleExecutive Role = "executive"
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
)

var legacyRoles = map[string]Role{
	"administrador": RoleAdmin,
	"diretoria":     RoleExecutive,
	"viewer":        RoleExecutive,
	"engenheiro":    RoleManager,
	"assistente":    RoleAssistant,
}

// NormalizeRole maps stored role labels, including the legacy Portuguese
// ones, onto canonical roles. Unrecognized values are returned lowercased so
// configured custom roles still resolve against the access policy.
func NormalizeRole(raw string) Role {
	key := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := legacyRoles[key]; ok {
		return mapped
	}
	return Role(key)
}

type SignatureSlot string

const (
	SlotInspector SignatureSlot = "inspector"
	SlotManager   SignatureSlot = "manager"
)

func (s SignatureSlot) IsValid() bool {
	return s == SlotInspector || s == SlotManager
}

func (s SignatureSlot) Label() string {
	if s == SlotManager {
		return "Engenheiro"
	}
	return "Inspetor"
}
