// Package game holds the domain rules of the clue-hunt trivia game:
// the fixed role catalog, scoring constants, session lifecycle states,
// and the letter-by-letter answer buffer.
package game

// Role is a static catalog entry. Every connected player owns exactly
// one role for the duration of a game.
type Role struct {
	Name        string `json:"roleName"`
	DisplayName string `json:"displayName"`
}

// Roles is the fixed catalog. Its size caps the number of concurrent
// players.
var Roles = []Role{
	{Name: "DETECTIVE", DisplayName: "Détective"},
	{Name: "ARCHIVIST", DisplayName: "Archiviste"},
	{Name: "CARTOGRAPHER", DisplayName: "Cartographe"},
	{Name: "LINGUIST", DisplayName: "Linguiste"},
	{Name: "HISTORIAN", DisplayName: "Historien"},
	{Name: "CHEMIST", DisplayName: "Chimiste"},
	{Name: "NAVIGATOR", DisplayName: "Navigateur"},
	{Name: "REPORTER", DisplayName: "Reporter"},
}

// MaxPlayers is the registry capacity: one player per catalog role.
var MaxPlayers = len(Roles)

// RoleByName looks up a catalog entry.
func RoleByName(name string) (Role, bool) {
	for _, r := range Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}
