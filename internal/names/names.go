// Package names maps catalog tag values to their display names.
package names

// ProdTypes maps product type tags to display names.
var ProdTypes = map[string]string{
	"game":    "Game",
	"movie":   "Movie",
	"dlc":     "DLC",
	"pack":    "Package",
	"unknown": "Unknown",
}

// Systems maps supported system tags to display names.
var Systems = map[string]string{
	"windows": "Windows",
	"mac":     "Mac",
	"linux":   "Linux",
}

// DlTypes maps download type tags to display names.
var DlTypes = map[string]string{
	"installer": "Installer",
	"patch":     "Patch",
	"langpack":  "Language pack",
	"bonus":     "Bonus",
}

// BonusTypes maps bonus type tags to display names.
var BonusTypes = map[string]string{
	"manuals":             "Manuals",
	"artworks":            "Artworks",
	"avatars":             "Avatars",
	"audio":               "Audio",
	"guides & reference ": "Guides & Reference", // historic tag with trailing space
	"guides & reference":  "Guides & Reference",
	"wallpapers":          "Wallpapers",
	"game add-ons":        "Game Add-ons",
	"video":               "Videos",
}
