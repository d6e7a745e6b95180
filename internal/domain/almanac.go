package domain

import (
	"strings"
	"unicode"
)

// LunarPending is shown when the upstream supplies no lunar date at all.
const LunarPending = "农历信息获取中..."

type AlmanacRecord struct {
	DateInfo    AlmanacDateInfo    `json:"date_info"`
	FortuneInfo AlmanacFortuneInfo `json:"fortune_info"`
	WuxingInfo  AlmanacWuxingInfo  `json:"wuxing_info"`
	XingsuInfo  AlmanacXingsuInfo  `json:"xingsu_info"`
}

type AlmanacDateInfo struct {
	GregorianDate  string `json:"gregorian_date"`
	LunarDate      string `json:"lunar_date"`
	LunarFormatted string `json:"lunar_formatted"`
	LunarMonthName string `json:"lunar_month_name"`
	YearGanzhi     string `json:"year_ganzhi"`
	MonthGanzhi    string `json:"month_ganzhi"`
	DayGanzhi      string `json:"day_ganzhi"`
	Zodiac         string `json:"zodiac"`
	LunarFestival  string `json:"lunar_festival"`
	Festival       string `json:"festival"`
	Jieqi          string `json:"jieqi"`
}

type AlmanacFortuneInfo struct {
	Fitness      string   `json:"fitness"`
	Taboo        string   `json:"taboo"`
	FitnessItems []string `json:"fitness_items"`
	TabooItems   []string `json:"taboo_items"`
	Shenwei      string   `json:"shenwei"`
	Taishen      string   `json:"taishen"`
	Chongsha     string   `json:"chongsha"`
	Suisha       string   `json:"suisha"`
	Pengzu       string   `json:"pengzu"`
	Jianshen     string   `json:"jianshen"`
}

type AlmanacWuxingInfo struct {
	Jiazi      string `json:"wuxingjiazi"`
	NayinYear  string `json:"wuxingnayear"`
	NayinMonth string `json:"wuxingnamonth"`
}

type AlmanacXingsuInfo struct {
	Xingsu string `json:"xingsu"`
}

// FormatLunar joins month and day when both are known, otherwise falls back to
// the raw lunar date and finally to LunarPending.
func FormatLunar(month, day, raw string) string {
	if month != "" && day != "" {
		return month + day
	}
	if raw != "" {
		return raw
	}
	return LunarPending
}

// SplitActivities splits an activity enumeration such as "祭祀、出行 嫁娶" into
// its items. Empty items are dropped; the result is never nil.
func SplitActivities(text string) []string {
	fields := strings.FieldsFunc(text, isEnumerationSeparator)
	items := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func isEnumerationSeparator(r rune) bool {
	switch r {
	case '、', '，', ',', '.', '。', ';', '；', '|':
		return true
	default:
		return unicode.IsSpace(r)
	}
}

// FestivalLabel returns the most specific festival label of the day.
func (d AlmanacDateInfo) FestivalLabel() string {
	for _, label := range []string{d.LunarFestival, d.Festival, d.Jieqi} {
		if label != "" {
			return label
		}
	}
	return ""
}
