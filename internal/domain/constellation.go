package domain

const (
	MinLuckyNumber = 1
	MaxLuckyNumber = 100
)

type ConstellationRecord struct {
	Sign           Sign                 `json:"sign"`
	Name           string               `json:"name"`
	DateRange      string               `json:"date_range"`
	Date           string               `json:"date"`
	OverallFortune string               `json:"overall_fortune"`
	LoveFortune    string               `json:"love_fortune"`
	CareerFortune  string               `json:"career_fortune"`
	WealthFortune  string               `json:"wealth_fortune"`
	HealthFortune  string               `json:"health_fortune"`
	LuckyNumber    int                  `json:"lucky_number"`
	LuckyColor     string               `json:"lucky_color"`
	Indices        ConstellationIndices `json:"indices"`
}

// ConstellationIndices are 0-100 scores derived from the narratives.
type ConstellationIndices struct {
	Comprehensive int `json:"comprehensive"`
	Love          int `json:"love"`
	Work          int `json:"work"`
	Money         int `json:"money"`
	Health        int `json:"health"`
}

func (i ConstellationIndices) Values() []int {
	return []int{i.Comprehensive, i.Love, i.Work, i.Money, i.Health}
}

// RandomLuckyNumber returns a value in [1,100].
func RandomLuckyNumber(rng RandomSource) int {
	return MinLuckyNumber + rng.IntN(MaxLuckyNumber-MinLuckyNumber+1)
}

// Quote is a one-line sentence shown alongside the daily fortune.
type Quote struct {
	Text    string `json:"hitokoto"`
	From    string `json:"from,omitempty"`
	FromWho string `json:"from_who,omitempty"`
}
