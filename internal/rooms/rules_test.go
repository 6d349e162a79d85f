package rooms_test

import (
	"testing"

	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/rooms"

	"github.com/stretchr/testify/assert"
)

func everyone(access rooms.Access) rooms.Rule {
	return rooms.Rule{Principal: rooms.Principal{Kind: rooms.PrincipalEveryone}, Access: access}
}

func member(id string, access rooms.Access) rooms.Rule {
	return rooms.Rule{Principal: rooms.Principal{Kind: rooms.PrincipalMember, ID: id}, Access: access}
}

func role(id string, access rooms.Access) rooms.Rule {
	return rooms.Rule{Principal: rooms.Principal{Kind: rooms.PrincipalRole, ID: id}, Access: access}
}

// TestBuildRulesOpenState verifies the documented rule order for a room below
// the hide threshold: everyone denied, bot allowed, audience roles, hidden
// role denied, creator allowed, blacklist denied last.
func TestBuildRulesOpenState(t *testing.T) {
	// Arrange
	in := rooms.RuleInput{
		BotID:        "bot",
		CreatorID:    "creator",
		Audience:     models.AudienceMale,
		HiddenRoleID: "hidden",
		MaleRoleID:   "male",
		FemaleRoleID: "female",
		Occupants:    []rooms.Occupant{{UserID: "creator"}},
		Blacklisted:  []string{"blocked1", "blocked2"},
	}

	// Act
	rules := rooms.BuildRules(in)

	// Assert
	expected := []rooms.Rule{
		everyone(rooms.Deny),
		member("bot", rooms.Allow),
		role("male", rooms.Allow),
		role("female", rooms.Deny),
		role("hidden", rooms.Deny),
		member("creator", rooms.Allow),
		member("blocked1", rooms.Deny),
		member("blocked2", rooms.Deny),
	}
	assert.Equal(t, expected, rules)
}

// TestBuildRulesFullState verifies that two or more humans switch the room to
// member allows: creator and occupants visible, audience roles absent.
func TestBuildRulesFullState(t *testing.T) {
	// Arrange
	in := rooms.RuleInput{
		BotID:        "bot",
		CreatorID:    "creator",
		Audience:     models.AudienceAll,
		HiddenRoleID: "hidden",
		MaleRoleID:   "male",
		FemaleRoleID: "female",
		Occupants: []rooms.Occupant{
			{UserID: "creator"},
			{UserID: "guest"},
		},
		Blacklisted: []string{"blocked"},
	}

	// Act
	rules := rooms.BuildRules(in)

	// Assert
	expected := []rooms.Rule{
		everyone(rooms.Deny),
		member("bot", rooms.Allow),
		member("creator", rooms.Allow),
		member("creator", rooms.Allow),
		member("guest", rooms.Allow),
		role("hidden", rooms.Deny),
		member("blocked", rooms.Deny),
	}
	assert.Equal(t, expected, rules)
	assert.True(t, in.Full(), "Two humans should put the room at the hide threshold")

	// Audience roles must not leak into the full state
	for _, r := range rules {
		if r.Principal.Kind == rooms.PrincipalRole {
			assert.NotEqual(t, "male", r.Principal.ID)
			assert.NotEqual(t, "female", r.Principal.ID)
		}
	}
}

// TestBuildRulesFemaleAudience verifies the mirrored audience rules.
func TestBuildRulesFemaleAudience(t *testing.T) {
	in := rooms.RuleInput{
		BotID:        "bot",
		CreatorID:    "creator",
		Audience:     models.AudienceFemale,
		HiddenRoleID: "hidden",
		MaleRoleID:   "male",
		FemaleRoleID: "female",
	}

	rules := rooms.BuildRules(in)

	assert.Contains(t, rules, role("female", rooms.Allow))
	assert.Contains(t, rules, role("male", rooms.Deny))
}

// TestBuildRulesAllAudience verifies that "all" allows both audience roles.
func TestBuildRulesAllAudience(t *testing.T) {
	in := rooms.RuleInput{
		BotID:        "bot",
		CreatorID:    "creator",
		Audience:     models.AudienceAll,
		MaleRoleID:   "male",
		FemaleRoleID: "female",
	}

	rules := rooms.BuildRules(in)

	assert.Contains(t, rules, role("male", rooms.Allow))
	assert.Contains(t, rules, role("female", rooms.Allow))
}

// TestBuildRulesSkipsUnconfiguredRoles verifies that empty role IDs produce
// no rules instead of rules with empty principals.
func TestBuildRulesSkipsUnconfiguredRoles(t *testing.T) {
	in := rooms.RuleInput{
		BotID:     "bot",
		CreatorID: "creator",
		Audience:  models.AudienceMale,
	}

	rules := rooms.BuildRules(in)

	expected := []rooms.Rule{
		everyone(rooms.Deny),
		member("bot", rooms.Allow),
		member("creator", rooms.Allow),
	}
	assert.Equal(t, expected, rules)
}

// TestBuildRulesBlacklistPassIsLast verifies the core safety property: a
// blacklisted member who is also a voice occupant ends up denied, because the
// blacklist pass runs after the occupant allows.
func TestBuildRulesBlacklistPassIsLast(t *testing.T) {
	// Arrange - "sneak" is inside the voice channel AND blacklisted
	in := rooms.RuleInput{
		BotID:        "bot",
		CreatorID:    "creator",
		Audience:     models.AudienceAll,
		HiddenRoleID: "hidden",
		Occupants: []rooms.Occupant{
			{UserID: "creator"},
			{UserID: "sneak"},
		},
		Blacklisted: []string{"sneak"},
	}

	// Act
	rules := rooms.BuildRules(in)
	flat := rooms.Flatten(rules)

	// Assert - the last rule for "sneak" wins after flattening
	assert.Contains(t, rules, member("sneak", rooms.Allow), "Occupant allow should be present in the raw list")
	assert.Contains(t, flat, member("sneak", rooms.Deny), "Blacklist denial must win")
	assert.NotContains(t, flat, member("sneak", rooms.Allow))
}

// TestFlattenLastRuleWins verifies last-write-wins per principal with stable
// first-seen ordering.
func TestFlattenLastRuleWins(t *testing.T) {
	rules := []rooms.Rule{
		everyone(rooms.Deny),
		member("a", rooms.Allow),
		member("b", rooms.Allow),
		member("a", rooms.Deny),
	}

	flat := rooms.Flatten(rules)

	expected := []rooms.Rule{
		everyone(rooms.Deny),
		member("a", rooms.Deny),
		member("b", rooms.Allow),
	}
	assert.Equal(t, expected, flat)
}

// TestRuleInputCounts verifies the occupancy arithmetic the reconciler
// reports and the voice cap formula.
func TestRuleInputCounts(t *testing.T) {
	in := rooms.RuleInput{
		Occupants: []rooms.Occupant{
			{UserID: "human1"},
			{UserID: "human2"},
			{UserID: "musicbot", Bot: true},
		},
	}

	assert.Equal(t, 2, in.HumanCount())
	assert.Equal(t, 1, in.BotCount())
	assert.Equal(t, 4, in.UserLimit(), "Cap should be everyone present plus one")
	assert.True(t, in.Full())

	empty := rooms.RuleInput{}
	assert.Equal(t, 0, empty.HumanCount())
	assert.Equal(t, 1, empty.UserLimit())
	assert.False(t, empty.Full(), "An empty room is open")
}

// TestViewerAudiences verifies the role-to-audience mapping used by the room
// listing.
func TestViewerAudiences(t *testing.T) {
	settings := &models.GuildSettings{MaleRoleID: "male", FemaleRoleID: "female"}

	assert.Equal(t,
		[]string{models.AudienceMale, models.AudienceAll},
		rooms.ViewerAudiences([]string{"male", "unrelated"}, settings))

	assert.Equal(t,
		[]string{models.AudienceFemale, models.AudienceAll},
		rooms.ViewerAudiences([]string{"female"}, settings))

	assert.ElementsMatch(t,
		[]string{models.AudienceMale, models.AudienceFemale, models.AudienceAll},
		rooms.ViewerAudiences([]string{"male", "female"}, settings))

	assert.Empty(t, rooms.ViewerAudiences([]string{"unrelated"}, settings),
		"Without an audience role nothing is browsable")
	assert.Empty(t, rooms.ViewerAudiences(nil, settings))
}

// TestViewerAudiencesUnconfigured verifies that empty settings never match a
// member's roles.
func TestViewerAudiencesUnconfigured(t *testing.T) {
	settings := &models.GuildSettings{}

	assert.Empty(t, rooms.ViewerAudiences([]string{"", "some-role"}, settings))
}
