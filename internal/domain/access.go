package domain

// RoleRule describes what one role may do. Read access is never restricted.
type RoleRule struct {
	Admin         bool            `yaml:"admin" json:"admin"`
	GlobalWrite   bool            `yaml:"global_write" json:"global_write"`
	AssignedWrite bool            `yaml:"assigned_write" json:"assigned_write"`
	SignSlots     []SignatureSlot `yaml:"sign_slots" json:"sign_slots"`
}

type AccessPolicy struct {
	rules map[Role]RoleRule
}

func DefaultRoleRules() map[Role]RoleRule {
	return map[Role]RoleRule{
		RoleAdmin:     {Admin: true, GlobalWrite: true, SignSlots: []SignatureSlot{SlotInspector, SlotManager}},
		RoleExecutive: {},
		RoleManager:   {AssignedWrite: true, SignSlots: []SignatureSlot{SlotManager}},
		RoleAssistant: {AssignedWrite: true, SignSlots: []SignatureSlot{SlotInspector}},
	}
}

func DefaultAccessPolicy() AccessPolicy {
	return NewAccessPolicy(nil)
}

// NewAccessPolicy layers rules over the defaults. A nil or empty map yields
// the default four-role policy.
func NewAccessPolicy(rules map[Role]RoleRule) AccessPolicy {
	merged := DefaultRoleRules()
	for role, rule := range rules {
		merged[NormalizeRole(string(role))] = rule
	}
	return AccessPolicy{rules: merged}
}

func (p AccessPolicy) rule(user UserProfile) (RoleRule, bool) {
	rule, ok := p.rules[NormalizeRole(string(user.Role))]
	return rule, ok
}

func (p AccessPolicy) CanRead(user UserProfile, _ string) bool {
	return user.ID != ""
}

func (p AccessPolicy) CanWrite(user UserProfile, projectID string) bool {
	rule, ok := p.rule(user)
	if !ok {
		return false
	}
	if rule.GlobalWrite {
		return true
	}
	return rule.AssignedWrite && user.AssignedTo(projectID)
}

func (p AccessPolicy) CanSign(user UserProfile, slot SignatureSlot) bool {
	rule, ok := p.rule(user)
	if !ok {
		return false
	}
	for _, s := range rule.SignSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (p AccessPolicy) IsAdmin(user UserProfile) bool {
	rule, ok := p.rule(user)
	return ok && rule.Admin
}

func (p AccessPolicy) KnowsRole(role Role) bool {
	_, ok := p.rules[NormalizeRole(string(role))]
	return ok
}

func (p AccessPolicy) IsZero() bool { return p.rules == nil }
