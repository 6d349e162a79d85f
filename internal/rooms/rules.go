package rooms

import "roomgogo/bot/internal/config"

// Access is the decision a rule carries.
type Access int

const (
	Deny Access = iota
	Allow
)

// PrincipalKind says what a rule's principal refers to.
type PrincipalKind int

const (
	PrincipalEveryone PrincipalKind = iota
	PrincipalRole
	PrincipalMember
)

// Principal identifies who a rule applies to. ID is empty for the everyone
// principal.
type Principal struct {
	Kind PrincipalKind
	ID   string
}

// Rule is one (principal, decision) pair. Room visibility is expressed as an
// ordered list of rules; when the same principal appears twice, the later
// rule wins.
type Rule struct {
	Principal Principal
	Access    Access
}

func denyEveryone() Rule {
	return Rule{Principal: Principal{Kind: PrincipalEveryone}, Access: Deny}
}

func allowMember(id string) Rule {
	return Rule{Principal: Principal{Kind: PrincipalMember, ID: id}, Access: Allow}
}

func denyMember(id string) Rule {
	return Rule{Principal: Principal{Kind: PrincipalMember, ID: id}, Access: Deny}
}

func allowRole(id string) Rule {
	return Rule{Principal: Principal{Kind: PrincipalRole, ID: id}, Access: Allow}
}

func denyRole(id string) Rule {
	return Rule{Principal: Principal{Kind: PrincipalRole, ID: id}, Access: Deny}
}

// RuleInput carries everything the rule builder needs. Role IDs may be empty
// when the guild has not configured them; rules for empty principals are
// skipped. Blacklisted holds only blacklist targets still present in the
// guild.
type RuleInput struct {
	BotID        string
	CreatorID    string
	Audience     string
	HiddenRoleID string
	MaleRoleID   string
	FemaleRoleID string
	Occupants    []Occupant
	Blacklisted  []string
}

// HumanCount counts the non-bot occupants.
func (in RuleInput) HumanCount() int {
	n := 0
	for _, o := range in.Occupants {
		if !o.Bot {
			n++
		}
	}
	return n
}

// BotCount counts the bot occupants.
func (in RuleInput) BotCount() int {
	return len(in.Occupants) - in.HumanCount()
}

// Full reports whether the room has reached the hide threshold.
func (in RuleInput) Full() bool {
	return in.HumanCount() >= config.FullThreshold
}

// UserLimit is the voice channel cap: everyone present plus one free seat.
func (in RuleInput) UserLimit() int {
	return len(in.Occupants) + config.LimitHeadroom
}

// BuildRules produces the ordered rule list for the room's current state.
//
// Full state: the room is visible only to the bot, the creator and whoever is
// already inside. Open state: the audience roles decide visibility. In both
// states the blacklist pass runs last so a blacklisted member never ends up
// allowed, not even while occupying the voice channel.
func BuildRules(in RuleInput) []Rule {
	rules := []Rule{denyEveryone()}
	if in.BotID != "" {
		rules = append(rules, allowMember(in.BotID))
	}

	if in.Full() {
		rules = append(rules, allowMember(in.CreatorID))
		for _, o := range in.Occupants {
			rules = append(rules, allowMember(o.UserID))
		}
		if in.HiddenRoleID != "" {
			rules = append(rules, denyRole(in.HiddenRoleID))
		}
	} else {
		switch in.Audience {
		case "male":
			if in.MaleRoleID != "" {
				rules = append(rules, allowRole(in.MaleRoleID))
			}
			if in.FemaleRoleID != "" {
				rules = append(rules, denyRole(in.FemaleRoleID))
			}
		case "female":
			if in.FemaleRoleID != "" {
				rules = append(rules, allowRole(in.FemaleRoleID))
			}
			if in.MaleRoleID != "" {
				rules = append(rules, denyRole(in.MaleRoleID))
			}
		default:
			if in.MaleRoleID != "" {
				rules = append(rules, allowRole(in.MaleRoleID))
			}
			if in.FemaleRoleID != "" {
				rules = append(rules, allowRole(in.FemaleRoleID))
			}
		}
		if in.HiddenRoleID != "" {
			rules = append(rules, denyRole(in.HiddenRoleID))
		}
		rules = append(rules, allowMember(in.CreatorID))
	}

	// Blacklist re-denial stays last.
	for _, id := range in.Blacklisted {
		rules = append(rules, denyMember(id))
	}

	return rules
}

// Flatten collapses an ordered rule list to one rule per principal, later
// rules overriding earlier ones. Principals keep their first-seen order, so
// the output is deterministic.
func Flatten(rules []Rule) []Rule {
	index := make(map[Principal]int, len(rules))
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if i, ok := index[r.Principal]; ok {
			out[i].Access = r.Access
			continue
		}
		index[r.Principal] = len(out)
		out = append(out, r)
	}
	return out
}
