// Package rank maps lifetime XP totals to achievement bands. The table is a
// static, process-wide constant: bands are contiguous, non-overlapping,
// ordered by MinXP, and the last band has no ceiling.
package rank

// Band is one achievement tier keyed by a contiguous XP range.
type Band struct {
	AchievementID int    `json:"achievement_id"`
	MinXP         int    `json:"min_xp"`
	MaxXP         int    `json:"max_xp"` // inclusive; ignored for the last band
	Title         string `json:"title"`
	IconURL       string `json:"icon_url"`
}

var bands = []Band{
	{AchievementID: 1, MinXP: 0, MaxXP: 299, Title: "Beginner", IconURL: "/assets/ranks/beginner.png"},
	{AchievementID: 2, MinXP: 300, MaxXP: 899, Title: "Explorer", IconURL: "/assets/ranks/explorer.png"},
	{AchievementID: 3, MinXP: 900, MaxXP: 1999, Title: "Adventurer", IconURL: "/assets/ranks/adventurer.png"},
	{AchievementID: 4, MinXP: 2000, MaxXP: 4999, Title: "Scholar", IconURL: "/assets/ranks/scholar.png"},
	{AchievementID: 5, MinXP: 5000, MaxXP: 9999, Title: "Master", IconURL: "/assets/ranks/master.png"},
}

// Bands returns the full table, lowest tier first.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// Lookup returns the band containing xp. It is total: negative values clamp
// to the first band and anything above the stated ceilings lands in the last.
func Lookup(xp int) Band {
	if xp < 0 {
		xp = 0
	}
	lo, hi := 0, len(bands)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if xp >= bands[mid].MinXP {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return bands[lo]
}
