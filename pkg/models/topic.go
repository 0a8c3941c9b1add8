package models

// LocalizedName holds a catalog entry's display name in every supported locale
type LocalizedName struct {
	NameRU string `json:"name_ru" db:"name_ru"`
	NameEN string `json:"name_en" db:"name_en"`
	NameUZ string `json:"name_uz" db:"name_uz"`
}

// Name returns the display name for locale, falling back to Russian
func (n LocalizedName) Name(locale string) string {
	switch locale {
	case LocaleEN:
		if n.NameEN != "" {
			return n.NameEN
		}
	case LocaleUZ:
		if n.NameUZ != "" {
			return n.NameUZ
		}
	}
	return n.NameRU
}

// Topic is a static catalog entry grouping phrases by subject
type Topic struct {
	ID int64 `json:"id" db:"id"`
	LocalizedName
}

// Level is a static catalog entry grouping phrases by difficulty
type Level struct {
	ID int64 `json:"id" db:"id"`
	LocalizedName
}
