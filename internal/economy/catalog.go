// internal/economy/catalog.go
//
// Prices, perks and level math for the coin economy.
package economy

import "math"

// Item identifies a consumable in the shop.
type Item string

const (
	Compass    Item = "compass"
	LetterSpy  Item = "letter_spy"
	TimeFreeze Item = "time_freeze"
)

// Entry is one shop listing.
type Entry struct {
	ID    Item   `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

var Catalog = map[Item]Entry{
	Compass:    {ID: Compass, Name: "Compass", Price: 40},
	LetterSpy:  {ID: LetterSpy, Name: "Letter Spy", Price: 60},
	TimeFreeze: {ID: TimeFreeze, Name: "Time Freeze", Price: 30},
}

// TimeFreezeSeconds is added to the blitz clock per Time Freeze.
const TimeFreezeSeconds = 20

// HintKind is the kind of purchased clue.
type HintKind string

const (
	HintWord     HintKind = "word"
	HintSentence HintKind = "sentence"
	HintCompass  HintKind = "compass"
)

var hintCost = map[HintKind]int{HintWord: 30, HintSentence: 20}

// Perk is a passive bonus unlocked by level.
type Perk string

const (
	PerkThrifty    Perk = "thrifty"     // hints cost 5 less
	PerkMoneyMaker Perk = "money_maker" // +5 coins per win
	PerkTimeLord   Perk = "time_lord"   // blitz starts at 70s
)

var perkLevel = map[Perk]int{PerkThrifty: 2, PerkMoneyMaker: 4, PerkTimeLord: 6}

const (
	baseWinReward  = 10
	xpPerLevelUnit = 100
)

// WinXP is the experience credited per solved word.
const WinXP = 25

// Level derives the player level from xp.
func Level(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/xpPerLevelUnit))) + 1
}

// HasPerk reports whether a player at level has unlocked p.
func HasPerk(level int, p Perk) bool {
	need, ok := perkLevel[p]
	return ok && level >= need
}

// HintCost is the price of a hint of kind for a player at level.
func HintCost(kind HintKind, level int) int {
	c, ok := hintCost[kind]
	if !ok {
		return 0
	}
	if HasPerk(level, PerkThrifty) {
		c -= 5
	}
	return c
}

// WinReward is the coin payout for a win.
func WinReward(level int) int {
	if HasPerk(level, PerkMoneyMaker) {
		return baseWinReward + 5
	}
	return baseWinReward
}

// BlitzSeconds is the starting clock for a blitz round.
func BlitzSeconds(level, base int) int {
	if base <= 0 {
		base = 60
	}
	if HasPerk(level, PerkTimeLord) {
		return base + 10
	}
	return base
}
