// Package gamedata carries the static reference tables for BF2:MC Online:
// the map rotation, team identities, gamemode ids and the score rank ladder.
package gamedata

// Gamemode identifiers as reported by the live-status API.
const (
	GamemodeConquest       = "conquest"
	GamemodeCaptureTheFlag = "capturetheflag"
)

// MapInfo pairs a map's display name with its numeric id used as the
// map_stats primary key.
type MapInfo struct {
	DisplayName string
	ID          int
}

// mapData keys are the raw map names reported by the API.
var mapData = map[string]MapInfo{
	"backstab":        {"Backstab", 0},
	"deadlypass":      {"Deadly Pass", 1},
	"bridgetoofar":    {"Bridge Too Far", 2},
	"coldfront":       {"Cold Front", 3},
	"dammage":         {"Dammage", 4},
	"harboredge":      {"Harbor Edge", 5},
	"honor":           {"Honor", 6},
	"littlebigeye":    {"Little Big Eye", 7},
	"missilecrisis":   {"Missile Crisis", 8},
	"russianborder":   {"Russian Border", 9},
	"specialop":       {"Special Op", 10},
	"theblackgold":    {"The Black Gold", 11},
	"backstab_cf":     {"Backstab CF", 12},
	"littlebigeye_cf": {"Little Big Eye CF", 13},
}

// MapByName resolves a raw API map name. The second return reports whether
// the map is part of the known rotation.
func MapByName(name string) (MapInfo, bool) {
	info, ok := mapData[name]
	return info, ok
}

// teamNames maps the API's country codes to display names. Any other code
// falls back to the EU bucket during aggregation.
var teamNames = map[string]string{
	"US": "US Marine Corps",
	"CH": "People's Liberation Army",
	"AC": "Middle Eastern Coalition",
	"EU": "European Union",
}

// TeamName returns the display name for a team country code, or the code
// itself when unknown.
func TeamName(code string) string {
	if name, ok := teamNames[code]; ok {
		return name
	}
	return code
}

// rank is one step of the score ladder shown on player profiles.
type rank struct {
	minScore int
	title    string
}

var rankLadder = []rank{
	{0, "Private"},
	{150, "Private 1st Class"},
	{500, "Corporal"},
	{800, "Sergeant"},
	{2500, "Sergeant 1st Class"},
	{5000, "Master Sergeant"},
	{8000, "Sgt. Major"},
	{12000, "Command Sgt. Major"},
	{16000, "Warrant Officer"},
	{21000, "Chief Warrant Officer"},
	{32000, "2nd Lieutenant"},
	{48000, "1st Lieutenant"},
	{64000, "Captain"},
	{80000, "Major"},
	{100000, "Lieutenant Colonel"},
	{125000, "Colonel"},
	{150000, "Brigadier General"},
	{180000, "Major General"},
	{220000, "Lieutenant General"},
	{260000, "5 Star General"},
}

// RankTitle returns the rank title earned at the given cumulative score.
func RankTitle(score int) string {
	title := rankLadder[0].title
	for _, r := range rankLadder {
		if score < r.minScore {
			break
		}
		title = r.title
	}
	return title
}
