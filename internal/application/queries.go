package application

import "github.com/bnema/daily-fortune/internal/domain"

// Source reports where a returned record came from.
type Source string

const (
	SourceUpstream    Source = "api"
	SourceCache       Source = "cache"
	SourcePlaceholder Source = "fallback"
)

type AlmanacResult struct {
	Record domain.AlmanacRecord
	Source Source
	Key    string
}

type ConstellationResult struct {
	Record domain.ConstellationRecord
	Source Source
	Key    string
}

type QuoteResult struct {
	Quote  domain.Quote
	Source Source
}

// SimpleAlmanac is the reduced almanac view: lunar date plus dos and don'ts.
type SimpleAlmanac struct {
	LunarDate string `json:"lunar_date"`
	Fitness   string `json:"fitness"`
	Taboo     string `json:"taboo"`
	Festival  string `json:"festival"`
}

func Simplify(record domain.AlmanacRecord) SimpleAlmanac {
	return SimpleAlmanac{
		LunarDate: record.DateInfo.LunarFormatted,
		Fitness:   record.FortuneInfo.Fitness,
		Taboo:     record.FortuneInfo.Taboo,
		Festival:  record.DateInfo.FestivalLabel(),
	}
}

// FortuneText renders the almanac as the three-line summary used by chat bots.
func FortuneText(record domain.AlmanacRecord) string {
	lunar := record.DateInfo.LunarFormatted
	if lunar == "" {
		lunar = domain.LunarPending
	}
	fitness := record.FortuneInfo.Fitness
	if fitness == "" {
		fitness = "摸鱼"
	}
	taboo := record.FortuneInfo.Taboo
	if taboo == "" {
		taboo = "加班"
	}

	return "📅 " + lunar + "\n✅ 宜：" + fitness + "\n❌ 忌：" + taboo
}
